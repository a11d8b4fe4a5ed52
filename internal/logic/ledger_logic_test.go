package logic

import (
	"path/filepath"
	"testing"

	"github.com/blues/lms/internal/database"
	"github.com/blues/lms/internal/model"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("failed to migrate test db: %v", err)
	}
	return db
}

func TestLoadOrCreateSnapshotDefaults(t *testing.T) {
	db := openTestDB(t)
	l := NewLedgerLogic(db)

	snapshot, err := l.LoadOrCreateSnapshot(99)
	if err != nil {
		t.Fatalf("load-or-create failed: %v", err)
	}

	if snapshot.PendingAmount != 0 || snapshot.AvailableAmount != 0 || snapshot.LifetimeSettled != 0 {
		t.Fatal("first-contact snapshot must be zeroed")
	}
	if snapshot.CurrentTier != string(model.SellerTierBronze) {
		t.Fatalf("expected bronze default tier, got %s", snapshot.CurrentTier)
	}

	// 再次加载返回同一行
	again, err := l.LoadOrCreateSnapshot(99)
	if err != nil {
		t.Fatalf("second load failed: %v", err)
	}
	if again.Id != snapshot.Id {
		t.Fatal("expected a single snapshot row per seller")
	}
}

func TestAppendSettlementInvariant(t *testing.T) {
	db := openTestDB(t)
	l := NewLedgerLogic(db)

	snapshot, err := l.LoadOrCreateSnapshot(7)
	if err != nil {
		t.Fatalf("load-or-create failed: %v", err)
	}
	db.Model(snapshot).Updates(map[string]interface{}{
		"pending_amount":   100000,
		"available_amount": 25000,
	})
	snapshot.PendingAmount = 100000
	snapshot.AvailableAmount = 25000

	batch := &model.SettlementBatchModel{Id: 1, SellerId: 7, TotalAmount: 60000}
	entry, err := l.AppendSettlement(snapshot, batch)
	if err != nil {
		t.Fatalf("append failed: %v", err)
	}

	if entry.AvailableAfter != entry.AvailableBefore+entry.Amount {
		t.Fatalf("available invariant broken: %d != %d + %d",
			entry.AvailableAfter, entry.AvailableBefore, entry.Amount)
	}
	if entry.PendingAfter != 40000 {
		t.Fatalf("expected pending 40000, got %d", entry.PendingAfter)
	}

	if snapshot.AvailableAmount != 85000 {
		t.Fatalf("snapshot available %d, want 85000", snapshot.AvailableAmount)
	}
	if snapshot.LifetimeSettled != 60000 {
		t.Fatalf("snapshot lifetime %d, want 60000", snapshot.LifetimeSettled)
	}
}

func TestAppendSettlementClampsPending(t *testing.T) {
	db := openTestDB(t)
	l := NewLedgerLogic(db)

	snapshot, err := l.LoadOrCreateSnapshot(8)
	if err != nil {
		t.Fatalf("load-or-create failed: %v", err)
	}
	db.Model(snapshot).Update("pending_amount", 10000)
	snapshot.PendingAmount = 10000

	// 待结算金额不足覆盖本批次时，pending 只降到 0，不出现负数
	batch := &model.SettlementBatchModel{Id: 2, SellerId: 8, TotalAmount: 50000}
	entry, err := l.AppendSettlement(snapshot, batch)
	if err != nil {
		t.Fatalf("append failed: %v", err)
	}

	if entry.PendingAfter != 0 {
		t.Fatalf("expected pending clamped to 0, got %d", entry.PendingAfter)
	}
	if entry.AvailableAfter != 50000 {
		t.Fatalf("expected available 50000, got %d", entry.AvailableAfter)
	}
}

func TestAppendSettlementRejectsInvalidAmount(t *testing.T) {
	db := openTestDB(t)
	l := NewLedgerLogic(db)

	snapshot, err := l.LoadOrCreateSnapshot(9)
	if err != nil {
		t.Fatalf("load-or-create failed: %v", err)
	}

	batch := &model.SettlementBatchModel{Id: 3, SellerId: 9, TotalAmount: 0}
	if _, err := l.AppendSettlement(snapshot, batch); err == nil {
		t.Fatal("expected error for non-positive amount")
	}

	var count int64
	db.Model(&model.LedgerEntryModel{}).Count(&count)
	if count != 0 {
		t.Fatalf("rejected batch must not write ledger entries, found %d", count)
	}
}
