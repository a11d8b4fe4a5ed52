package logic

import (
	"testing"
	"time"

	"github.com/blues/lms/internal/model"
)

func TestDecideTier(t *testing.T) {
	tests := []struct {
		name     string
		previous string
		orders   int64
		rto      float64
		want     string
	}{
		{"gold downgraded on order floor", "gold", 400, 10, "silver"},
		{"bronze straight to gold", "bronze", 850, 5, "gold"},
		{"bronze stays bronze on low volume", "bronze", 50, 30, "bronze"},
		{"bronze to silver", "bronze", 400, 10, "silver"},
		{"bronze blocked by rto", "bronze", 400, 20, "bronze"},
		{"silver to gold", "silver", 850, 5, "gold"},
		{"silver downgraded on order floor", "silver", 100, 5, "bronze"},
		{"silver downgraded on rto", "silver", 200, 25, "bronze"},
		{"gold holds in hysteresis band", "gold", 600, 10, "gold"},
		{"gold downgraded on rto", "gold", 900, 20, "silver"},
		{"gold cascades to bronze", "gold", 100, 30, "bronze"},
		{"silver holds in hysteresis band", "silver", 200, 10, "silver"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, reason := DecideTier(tt.previous, SellerMetrics{TotalOrders: tt.orders, RtoPercent: tt.rto})
			if got != tt.want {
				t.Fatalf("DecideTier(%s, %d, %.1f) = %s, want %s (reason: %s)",
					tt.previous, tt.orders, tt.rto, got, tt.want, reason)
			}
			if reason == "" {
				t.Fatal("reason must always be populated")
			}
		})
	}
}

func TestComputeMetrics(t *testing.T) {
	db := openTestDB(t)
	tl := NewTierLogic(db)
	now := time.Now()

	statuses := []string{
		string(model.ShipmentStatusDelivered),
		string(model.ShipmentStatusDelivered),
		string(model.ShipmentStatusRto),
		string(model.ShipmentStatusCancelled),
	}
	for i, status := range statuses {
		shipment := &model.ShipmentModel{
			SellerId:    5,
			CarrierId:   1,
			OrderNumber: "ORD-" + string(rune('A'+i)),
			Status:      status,
		}
		if err := db.Create(shipment).Error; err != nil {
			t.Fatalf("failed to seed shipment: %v", err)
		}
	}
	// 其他卖家的运单不计入
	other := &model.ShipmentModel{SellerId: 6, CarrierId: 1, OrderNumber: "ORD-OTHER", Status: string(model.ShipmentStatusRto)}
	if err := db.Create(other).Error; err != nil {
		t.Fatalf("failed to seed shipment: %v", err)
	}

	metrics, err := tl.ComputeMetrics(5, now)
	if err != nil {
		t.Fatalf("compute failed: %v", err)
	}

	if metrics.TotalOrders != 4 {
		t.Fatalf("total orders %d, want 4", metrics.TotalOrders)
	}
	if metrics.Delivered != 2 || metrics.Returned != 1 || metrics.Cancelled != 1 {
		t.Fatalf("unexpected breakdown: %+v", metrics)
	}
	if metrics.RtoPercent != 25.0 {
		t.Fatalf("rto percent %.2f, want 25.00", metrics.RtoPercent)
	}
}

func TestComputeMetricsRounding(t *testing.T) {
	db := openTestDB(t)
	tl := NewTierLogic(db)
	now := time.Now()

	// 1/3 退回，应四舍五入到两位小数
	statuses := []string{
		string(model.ShipmentStatusDelivered),
		string(model.ShipmentStatusDelivered),
		string(model.ShipmentStatusRto),
	}
	for i, status := range statuses {
		shipment := &model.ShipmentModel{SellerId: 5, CarrierId: 1, OrderNumber: "R-" + string(rune('A'+i)), Status: status}
		if err := db.Create(shipment).Error; err != nil {
			t.Fatalf("failed to seed shipment: %v", err)
		}
	}

	metrics, err := tl.ComputeMetrics(5, now)
	if err != nil {
		t.Fatalf("compute failed: %v", err)
	}
	if metrics.RtoPercent != 33.33 {
		t.Fatalf("rto percent %.4f, want 33.33", metrics.RtoPercent)
	}
}

func TestComputeMetricsEmptyWindow(t *testing.T) {
	db := openTestDB(t)
	tl := NewTierLogic(db)

	metrics, err := tl.ComputeMetrics(404, time.Now())
	if err != nil {
		t.Fatalf("compute failed: %v", err)
	}
	if metrics.TotalOrders != 0 || metrics.RtoPercent != 0 {
		t.Fatalf("expected zero metrics without orders, got %+v", metrics)
	}
}

func TestEvaluateSellerWritesAuditTrail(t *testing.T) {
	db := openTestDB(t)
	tl := NewTierLogic(db)
	now := time.Now()

	seller := &model.SellerModel{Name: "Shop A", Email: "a@example.com", Tier: string(model.SellerTierBronze), Active: true}
	if err := db.Create(seller).Error; err != nil {
		t.Fatalf("failed to seed seller: %v", err)
	}

	record, err := tl.EvaluateSeller(seller, now)
	if err != nil {
		t.Fatalf("evaluation failed: %v", err)
	}

	// 无变化也要留痕，previousTier 对齐评估开始时的快照
	if record.PreviousTier != string(model.SellerTierBronze) || record.NewTier != string(model.SellerTierBronze) {
		t.Fatalf("unexpected tiers %s -> %s", record.PreviousTier, record.NewTier)
	}
	if record.Reason == "" {
		t.Fatal("reason must be populated on no-change evaluations")
	}
	if record.Period != now.UTC().Format("2006-01") {
		t.Fatalf("unexpected period %s", record.Period)
	}

	var count int64
	db.Model(&model.TierEvaluationModel{}).Where("seller_id = ?", seller.Id).Count(&count)
	if count != 1 {
		t.Fatalf("expected 1 evaluation record, found %d", count)
	}
}

func TestEvaluateSellerAppliesChange(t *testing.T) {
	db := openTestDB(t)
	tl := NewTierLogic(db)
	now := time.Now()

	seller := &model.SellerModel{Name: "Shop B", Email: "b@example.com", Tier: string(model.SellerTierSilver), Active: true}
	if err := db.Create(seller).Error; err != nil {
		t.Fatalf("failed to seed seller: %v", err)
	}
	snapshot, err := NewLedgerLogic(db).LoadOrCreateSnapshot(seller.Id)
	if err != nil {
		t.Fatalf("snapshot failed: %v", err)
	}
	db.Model(snapshot).Update("current_tier", model.SellerTierSilver)

	// 窗口内仅 2 单，跌破白银保级线
	for i := 0; i < 2; i++ {
		shipment := &model.ShipmentModel{SellerId: seller.Id, CarrierId: 1, OrderNumber: "B-" + string(rune('A'+i)), Status: string(model.ShipmentStatusDelivered)}
		if err := db.Create(shipment).Error; err != nil {
			t.Fatalf("failed to seed shipment: %v", err)
		}
	}

	record, err := tl.EvaluateSeller(seller, now)
	if err != nil {
		t.Fatalf("evaluation failed: %v", err)
	}

	if record.PreviousTier != string(model.SellerTierSilver) {
		t.Fatalf("previous tier %s, want silver", record.PreviousTier)
	}
	if record.NewTier != string(model.SellerTierBronze) {
		t.Fatalf("new tier %s, want bronze", record.NewTier)
	}

	var updatedSeller model.SellerModel
	db.First(&updatedSeller, seller.Id)
	if updatedSeller.Tier != string(model.SellerTierBronze) {
		t.Fatalf("seller tier not updated, got %s", updatedSeller.Tier)
	}

	var updatedSnapshot model.BalanceSnapshotModel
	db.Where("seller_id = ?", seller.Id).First(&updatedSnapshot)
	if updatedSnapshot.CurrentTier != string(model.SellerTierBronze) {
		t.Fatalf("snapshot tier not updated, got %s", updatedSnapshot.CurrentTier)
	}
	if updatedSnapshot.MonthlyOrders != 2 || updatedSnapshot.MonthlyDelivered != 2 {
		t.Fatalf("rolling counters not refreshed: %+v", updatedSnapshot)
	}
	if updatedSnapshot.LastEvaluatedAt == nil {
		t.Fatal("expected last evaluation timestamp")
	}
}
