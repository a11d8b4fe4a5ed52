package webhook

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/blues/lms/internal/model"
)

func testShipment() *model.ShipmentModel {
	created := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	return &model.ShipmentModel{
		Id:            42,
		CreatedAt:     created,
		UpdatedAt:     created.Add(time.Hour),
		SellerId:      7,
		CarrierId:     3,
		OrderNumber:   "ORD-1001",
		Awb:           "AWB0042",
		Status:        string(model.ShipmentStatusInTransit),
		PaymentMode:   "cod",
		PickupName:    "Warehouse A",
		PickupPhone:   "9000000001",
		PickupAddress: "Plot 12, Industrial Area",
		PickupCity:    "Pune",
		PickupState:   "MH",
		PickupPincode: "411001",

		ReceiverName:    "Asha",
		ReceiverPhone:   "9000000002",
		ReceiverAddress: "14 Lake Road",
		ReceiverCity:    "Mumbai",
		ReceiverState:   "MH",
		ReceiverPincode: "400001",

		FreightCharge: 5500,
		CodCharge:     2500,
		TotalCharge:   8000,
		ServiceType:   "express",
		RouteCode:     "PNQ-BOM",
	}
}

func TestBuildPayloadDefaults(t *testing.T) {
	shipment := testShipment()
	carrier := &model.CarrierModel{Id: 3, Code: "bluedart"}

	payload := BuildPayload(shipment, nil, nil, carrier)

	// 可选字段必须有显式默认值
	if payload.Sender.AddressType != "home" {
		t.Fatalf("expected default sender address type home, got %q", payload.Sender.AddressType)
	}
	if payload.Receiver.AddressType != "home" {
		t.Fatalf("expected default receiver address type home, got %q", payload.Receiver.AddressType)
	}
	if payload.Sender.Email != "" || payload.Sender.Landmark != "" {
		t.Fatal("expected empty-string defaults for optional sender fields")
	}
	if payload.Packages == nil || payload.Tracking.History == nil {
		t.Fatal("expected empty slices, not nil, for packages and tracking history")
	}
	if payload.Service.CarrierCode != "bluedart" {
		t.Fatalf("expected carrier code in service block, got %q", payload.Service.CarrierCode)
	}
	if payload.Tracking.CurrentStatus != string(model.ShipmentStatusInTransit) {
		t.Fatalf("unexpected tracking status %q", payload.Tracking.CurrentStatus)
	}
}

func TestBuildPayloadSerializationStable(t *testing.T) {
	shipment := testShipment()
	carrier := &model.CarrierModel{Id: 3, Code: "bluedart"}
	packages := []model.ShipmentPackageModel{
		{ShipmentId: 42, Description: "books", WeightGrams: 1200, DeclaredValue: 45000},
	}
	events := []model.TrackingEventModel{
		{ShipmentId: 42, Status: "picked_up", Location: "Pune", OccurredAt: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)},
		{ShipmentId: 42, Status: "in_transit", Location: "Mumbai", OccurredAt: time.Date(2026, 8, 2, 9, 0, 0, 0, time.UTC)},
	}

	first, err := json.Marshal(BuildPayload(shipment, packages, events, carrier))
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	second, err := json.Marshal(BuildPayload(shipment, packages, events, carrier))
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	if !bytes.Equal(first, second) {
		t.Fatal("same shipment state serialized differently across calls")
	}

	// 同一状态的签名必须可复算
	if Sign(first, "secret") != Sign(second, "secret") {
		t.Fatal("stable serialization must produce stable signatures")
	}
}

func TestBuildPayloadTrackingHistory(t *testing.T) {
	shipment := testShipment()
	carrier := &model.CarrierModel{Id: 3, Code: "bluedart"}
	events := []model.TrackingEventModel{
		{Status: "picked_up", Remark: "bag scanned", Location: "Pune", OccurredAt: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)},
		{Status: "in_transit", Location: "Lonavala", OccurredAt: time.Date(2026, 8, 1, 20, 0, 0, 0, time.UTC)},
	}

	payload := BuildPayload(shipment, nil, events, carrier)

	if len(payload.Tracking.History) != 2 {
		t.Fatalf("expected 2 history events, got %d", len(payload.Tracking.History))
	}
	if payload.Tracking.History[0].Status != "picked_up" {
		t.Fatalf("history order not preserved, first event %q", payload.Tracking.History[0].Status)
	}
	if payload.Tracking.History[0].Timestamp != "2026-08-01T12:00:00Z" {
		t.Fatalf("unexpected timestamp format %q", payload.Tracking.History[0].Timestamp)
	}
}

func TestBuildPayloadPackageQuantityDefault(t *testing.T) {
	shipment := testShipment()
	carrier := &model.CarrierModel{Id: 3, Code: "bluedart"}
	packages := []model.ShipmentPackageModel{
		{ShipmentId: 42, WeightGrams: 500}, // 数量缺省
	}

	payload := BuildPayload(shipment, packages, nil, carrier)

	if payload.Packages[0].Quantity != 1 {
		t.Fatalf("expected default quantity 1, got %d", payload.Packages[0].Quantity)
	}
}
