package service

import (
	"testing"

	"github.com/guinanlin/rongguan-erp/internal/erp/entity"
	"github.com/guinanlin/rongguan-erp/internal/erp/testutil"
	"gorm.io/gorm"
)

func seedOrderChainBase(t *testing.T, db *gorm.DB) (customerID string) {
	t.Helper()
	testutil.SeedAttributeMasters(t, db)
	testutil.SeedCompany(t, db, "荣冠制衣")
	customer := testutil.SeedCustomer(t, db, "测试客户")
	return customer.ID
}

func TestCreateOrderChainDerivesMaterials(t *testing.T) {
	services, db := newTestServices(t)
	customerID := seedOrderChainBase(t, db)
	testutil.SeedVariantItem(t, db, "TEE-RED-M", "红色", "M")
	testutil.SeedVariantItem(t, db, "TEE-BLUE-L", "蓝色", "L")

	result, err := services.Order.CreateOrderChain(CreateOrderChainRequest{
		CustomerID: customerID,
		Company:    "荣冠制衣",
		Items: []OrderLineItem{
			{ItemCode: "TEE-RED-M", ItemName: "红T M", Quantity: 5, Rate: 10},
			{ItemCode: "TEE-BLUE-L", ItemName: "蓝T L", Quantity: 3, Rate: 20},
		},
		ProcessSteps: []ProcessStepInput{
			{Operation: "裁剪", ProcessParty: "一车间"},
			{Operation: "缝制", ProcessParty: "二车间"},
		},
	}, "tester")
	if err != nil {
		t.Fatalf("CreateOrderChain failed: %v", err)
	}
	if result.PatternID != "" {
		t.Errorf("Standard contract should not create a pattern record, got %s", result.PatternID)
	}

	var so entity.SalesOrder
	if err := db.Preload("Items").First(&so, "id = ?", result.OrderID).Error; err != nil {
		t.Fatalf("Sales order not found: %v", err)
	}
	if so.Status != entity.SOStatusSubmitted {
		t.Errorf("SO status = %s, want SUBMITTED", so.Status)
	}
	if so.TotalAmount != 110 {
		t.Errorf("TotalAmount = %v, want 110", so.TotalAmount)
	}
	if len(so.Items) != 2 || so.Items[0].Color != "红色" || so.Items[0].Size != "M" {
		t.Errorf("SO item variant attributes not backfilled: %+v", so.Items)
	}

	po, err := services.Order.GetProductionOrder(result.ProductionOrderID)
	if err != nil {
		t.Fatalf("GetProductionOrder failed: %v", err)
	}
	if po.SOCode != result.SOCode {
		t.Errorf("PO so_code = %s, want %s", po.SOCode, result.SOCode)
	}
	if po.TotalQty != 8 {
		t.Errorf("TotalQty = %v, want 8", po.TotalQty)
	}
	if len(po.Materials) != 2 {
		t.Fatalf("Materials = %d rows, want 2", len(po.Materials))
	}
	first := po.Materials[0]
	if first.ItemCode != "TEE-RED-M" || first.Color != "红色" || first.SizeQty["M"] != 5 {
		t.Errorf("Material row 1 = %+v", first)
	}
	second := po.Materials[1]
	if second.ItemCode != "TEE-BLUE-L" || second.Color != "蓝色" || second.SizeQty["L"] != 3 {
		t.Errorf("Material row 2 = %+v", second)
	}
	if len(po.Operations) != 2 || po.Operations[0].Operation != "裁剪" {
		t.Errorf("Operations = %+v", po.Operations)
	}
}

func TestCreateOrderChainMergesSameMaterialKey(t *testing.T) {
	services, db := newTestServices(t)
	customerID := seedOrderChainBase(t, db)
	testutil.SeedVariantItem(t, db, "TEE-RED-M", "红色", "M")

	result, err := services.Order.CreateOrderChain(CreateOrderChainRequest{
		CustomerID: customerID,
		Company:    "荣冠制衣",
		Items: []OrderLineItem{
			{ItemCode: "TEE-RED-M", Quantity: 5},
			{ItemCode: "TEE-RED-M", Quantity: 3},
		},
	}, "tester")
	if err != nil {
		t.Fatalf("CreateOrderChain failed: %v", err)
	}

	po, err := services.Order.GetProductionOrder(result.ProductionOrderID)
	if err != nil {
		t.Fatalf("GetProductionOrder failed: %v", err)
	}
	if len(po.Materials) != 1 {
		t.Fatalf("Materials = %d rows, want 1 merged row", len(po.Materials))
	}
	if po.Materials[0].SizeQty["M"] != 8 {
		t.Errorf("Merged size qty = %v, want 8", po.Materials[0].SizeQty["M"])
	}
}

func TestCreateOrderChainRollsBackOnResolutionFailure(t *testing.T) {
	services, db := newTestServices(t)
	customerID := seedOrderChainBase(t, db)
	testutil.SeedVariantItem(t, db, "TEE-RED-M", "红色", "M")

	_, err := services.Order.CreateOrderChain(CreateOrderChainRequest{
		CustomerID: customerID,
		Company:    "荣冠制衣",
		Items: []OrderLineItem{
			{ItemCode: "TEE-RED-M", Quantity: 5},
			{ItemCode: "RAW-FABRIC", Quantity: 2}, // 无变体属性，解析必然失败
		},
	}, "tester")
	if err == nil {
		t.Fatal("Expected resolution failure")
	}
	if KindOf(err) != FailureResolution {
		t.Errorf("KindOf = %q, want %q", KindOf(err), FailureResolution)
	}

	// 整链回滚，任何单据都不应落库
	if n := countRows(t, db, &entity.SalesOrder{}); n != 0 {
		t.Errorf("Sales orders = %d, want 0", n)
	}
	if n := countRows(t, db, &entity.SalesOrderItem{}); n != 0 {
		t.Errorf("Sales order items = %d, want 0", n)
	}
	if n := countRows(t, db, &entity.ProductionOrder{}); n != 0 {
		t.Errorf("Production orders = %d, want 0", n)
	}
	if n := countRows(t, db, &entity.ProductionOrderMaterial{}); n != 0 {
		t.Errorf("Production materials = %d, want 0", n)
	}
	// 事务内补建的物料主数据同样回滚
	var items int64
	db.Model(&entity.Item{}).Where("item_code = ?", "RAW-FABRIC").Count(&items)
	if items != 0 {
		t.Errorf("Auto-created item survived rollback")
	}
}

func TestCreateOrderChainSampleCreatesPattern(t *testing.T) {
	services, db := newTestServices(t)
	customerID := seedOrderChainBase(t, db)
	item := testutil.SeedVariantItem(t, db, "TEE-RED-M", "红色", "M")
	item.VariantOf = "TEE"
	if err := db.Save(item).Error; err != nil {
		t.Fatalf("Failed to update item: %v", err)
	}

	result, err := services.Order.CreateOrderChain(CreateOrderChainRequest{
		CustomerID:   customerID,
		Company:      "荣冠制衣",
		ContractType: entity.ContractTypeSample,
		Items: []OrderLineItem{
			{ItemCode: "TEE-RED-M", Quantity: 1},
		},
	}, "tester")
	if err != nil {
		t.Fatalf("CreateOrderChain failed: %v", err)
	}
	if result.PatternID == "" {
		t.Fatal("Sample contract should create a pattern record")
	}

	var pattern entity.PatternRecord
	if err := db.First(&pattern, "id = ?", result.PatternID).Error; err != nil {
		t.Fatalf("Pattern record not found: %v", err)
	}
	if pattern.SalesOrderID != result.OrderID {
		t.Errorf("Pattern sales_order_id = %s, want %s", pattern.SalesOrderID, result.OrderID)
	}
	if pattern.PatternSeq != 1 || pattern.VersionLabel != "V1" {
		t.Errorf("Pattern seq/version = %d/%s, want 1/V1", pattern.PatternSeq, pattern.VersionLabel)
	}
	if pattern.StyleItemCode != "TEE" {
		t.Errorf("StyleItemCode = %s, want template code TEE", pattern.StyleItemCode)
	}
	if pattern.Status != entity.PatternStatusDraft {
		t.Errorf("Pattern status = %s, want DRAFT", pattern.Status)
	}
}

func TestCreateOrderChainDuplicateSOCode(t *testing.T) {
	services, db := newTestServices(t)
	customerID := seedOrderChainBase(t, db)
	testutil.SeedVariantItem(t, db, "TEE-RED-M", "红色", "M")

	req := CreateOrderChainRequest{
		SOCode:     "SO-DUP-001",
		CustomerID: customerID,
		Company:    "荣冠制衣",
		Items:      []OrderLineItem{{ItemCode: "TEE-RED-M", Quantity: 1}},
	}
	if _, err := services.Order.CreateOrderChain(req, "tester"); err != nil {
		t.Fatalf("First CreateOrderChain failed: %v", err)
	}
	_, err := services.Order.CreateOrderChain(req, "tester")
	if err == nil {
		t.Fatal("Expected duplicate failure")
	}
	if KindOf(err) != FailureDuplicate {
		t.Errorf("KindOf = %q, want %q", KindOf(err), FailureDuplicate)
	}
}

func TestCreateOrderChainUnknownCustomer(t *testing.T) {
	services, db := newTestServices(t)
	testutil.SeedCompany(t, db, "荣冠制衣")

	_, err := services.Order.CreateOrderChain(CreateOrderChainRequest{
		CustomerID: "missing-customer",
		Company:    "荣冠制衣",
		Items:      []OrderLineItem{{ItemCode: "X", Quantity: 1}},
	}, "tester")
	if err == nil {
		t.Fatal("Expected reference failure")
	}
	if KindOf(err) != FailureReferenceNotFound {
		t.Errorf("KindOf = %q, want %q", KindOf(err), FailureReferenceNotFound)
	}
}
