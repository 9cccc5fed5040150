package service

import (
	"context"
	"math"
	"testing"

	"github.com/guinanlin/rongguan-erp/internal/erp/entity"
	"github.com/guinanlin/rongguan-erp/internal/erp/testutil"
	"gorm.io/gorm"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func seedBOMComponents(t *testing.T, db *gorm.DB) {
	t.Helper()
	testutil.SeedItem(t, db, "FABRIC-A", "面料A")
	testutil.SeedItem(t, db, "BUTTON-B", "纽扣B")
	testutil.SeedItem(t, db, "THREAD-C", "缝线C")
}

func TestCreateVersionRollsUpCosts(t *testing.T) {
	services, db := newTestServices(t)
	testutil.SeedItem(t, db, "TEE-001", "基础T恤")
	seedBOMComponents(t, db)

	bom, err := services.BOM.CreateVersion(CreateBOMVersionRequest{
		ItemCode: "TEE-001",
		Items: []BOMLineInput{
			{ItemCode: "FABRIC-A", Quantity: 2, Rate: 3},
			{ItemCode: "BUTTON-B", Quantity: 1, Rate: 10},
		},
		Operations: []BOMOperationInput{
			{Operation: "缝制", TimeMinutes: 60, HourlyRate: 30},
		},
	}, "tester")
	if err != nil {
		t.Fatalf("CreateVersion failed: %v", err)
	}

	if bom.BOMCode != "BOM-TEE-001-001" {
		t.Errorf("BOMCode = %s, want BOM-TEE-001-001", bom.BOMCode)
	}
	if bom.VersionSeq != 1 {
		t.Errorf("VersionSeq = %d, want 1", bom.VersionSeq)
	}
	if bom.Status != entity.BOMStatusSubmitted {
		t.Errorf("Status = %s, want SUBMITTED", bom.Status)
	}
	if !almostEqual(bom.RawMaterialCost, 16) {
		t.Errorf("RawMaterialCost = %v, want 16", bom.RawMaterialCost)
	}
	if !almostEqual(bom.OperatingCost, 30) {
		t.Errorf("OperatingCost = %v, want 30", bom.OperatingCost)
	}
	if !almostEqual(bom.TotalCost, 46) {
		t.Errorf("TotalCost = %v, want 46", bom.TotalCost)
	}
	if !almostEqual(bom.Items[0].Amount, 6) {
		t.Errorf("Line amount = %v, want 6", bom.Items[0].Amount)
	}
}

func TestCreateVersionMissingComponents(t *testing.T) {
	services, db := newTestServices(t)
	testutil.SeedItem(t, db, "TEE-001", "基础T恤")

	_, err := services.BOM.CreateVersion(CreateBOMVersionRequest{
		ItemCode: "TEE-001",
		Items: []BOMLineInput{
			{ItemCode: "NO-SUCH-1", Quantity: 1},
			{ItemCode: "NO-SUCH-2", Quantity: 1},
		},
	}, "tester")
	if err == nil {
		t.Fatal("Expected reference failure")
	}
	if KindOf(err) != FailureReferenceNotFound {
		t.Errorf("KindOf = %q, want %q", KindOf(err), FailureReferenceNotFound)
	}
	if n := countRows(t, db, &entity.BOMVersion{}); n != 0 {
		t.Errorf("BOM versions = %d, want 0 after rollback", n)
	}
}

func TestDefaultVersionIsExclusive(t *testing.T) {
	services, db := newTestServices(t)
	testutil.SeedItem(t, db, "TEE-001", "基础T恤")
	seedBOMComponents(t, db)

	lines := []BOMLineInput{{ItemCode: "FABRIC-A", Quantity: 1, Rate: 5}}
	v1, err := services.BOM.CreateVersion(CreateBOMVersionRequest{
		ItemCode: "TEE-001", Items: lines, IsDefault: true,
	}, "tester")
	if err != nil {
		t.Fatalf("CreateVersion v1 failed: %v", err)
	}
	v2, err := services.BOM.CreateVersion(CreateBOMVersionRequest{
		ItemCode: "TEE-001", Items: lines, IsDefault: true,
	}, "tester")
	if err != nil {
		t.Fatalf("CreateVersion v2 failed: %v", err)
	}

	var defaults int64
	db.Model(&entity.BOMVersion{}).Where("item_code = ? AND is_default = ?", "TEE-001", true).Count(&defaults)
	if defaults != 1 {
		t.Errorf("Default versions = %d, want exactly 1", defaults)
	}

	var stored entity.BOMVersion
	if err := db.First(&stored, "id = ?", v1.ID).Error; err != nil {
		t.Fatalf("v1 not found: %v", err)
	}
	if stored.IsDefault {
		t.Error("v1 should have lost the default flag")
	}

	var item entity.Item
	if err := db.First(&item, "item_code = ?", "TEE-001").Error; err != nil {
		t.Fatalf("Item not found: %v", err)
	}
	if item.DefaultBOMID != v2.ID {
		t.Errorf("DefaultBOMID = %s, want %s", item.DefaultBOMID, v2.ID)
	}
}

func TestCreateVersionFromSource(t *testing.T) {
	services, db := newTestServices(t)
	testutil.SeedItem(t, db, "TEE-001", "基础T恤")
	seedBOMComponents(t, db)

	v1, err := services.BOM.CreateVersion(CreateBOMVersionRequest{
		ItemCode: "TEE-001",
		Items: []BOMLineInput{
			{ItemCode: "FABRIC-A", Quantity: 2, Rate: 3},
			{ItemCode: "BUTTON-B", Quantity: 4, Rate: 1},
			{ItemCode: "THREAD-C", Quantity: 1, Rate: 2},
		},
		Operations: []BOMOperationInput{{Operation: "缝制", TimeMinutes: 30, HourlyRate: 20}},
	}, "tester")
	if err != nil {
		t.Fatalf("CreateVersion v1 failed: %v", err)
	}

	v2, err := services.BOM.CreateVersion(CreateBOMVersionRequest{
		ItemCode:    "TEE-001",
		SourceBOMID: v1.ID,
		IsDefault:   true,
	}, "tester")
	if err != nil {
		t.Fatalf("CreateVersion from source failed: %v", err)
	}

	if v2.PredecessorID != v1.ID {
		t.Errorf("PredecessorID = %s, want %s", v2.PredecessorID, v1.ID)
	}
	if v2.VersionSeq != 2 || v2.BOMCode != "BOM-TEE-001-002" {
		t.Errorf("v2 seq/code = %d/%s", v2.VersionSeq, v2.BOMCode)
	}
	if len(v2.Items) != 3 {
		t.Fatalf("Copied line items = %d, want 3", len(v2.Items))
	}
	for i := range v2.Items {
		if v2.Items[i].ID == v1.Items[i].ID {
			t.Errorf("Copied line %d reuses the source row ID", i)
		}
		if v2.Items[i].BOMID != v2.ID {
			t.Errorf("Copied line %d points at wrong BOM", i)
		}
	}
	if !almostEqual(v2.TotalCost, v1.TotalCost) {
		t.Errorf("Copied TotalCost = %v, want %v", v2.TotalCost, v1.TotalCost)
	}
}

func TestSubmitRejectsNonDraft(t *testing.T) {
	services, db := newTestServices(t)
	testutil.SeedItem(t, db, "TEE-001", "基础T恤")
	seedBOMComponents(t, db)

	bom, err := services.BOM.CreateVersion(CreateBOMVersionRequest{
		ItemCode: "TEE-001",
		Items:    []BOMLineInput{{ItemCode: "FABRIC-A", Quantity: 1}},
	}, "tester")
	if err != nil {
		t.Fatalf("CreateVersion failed: %v", err)
	}

	_, err = services.BOM.Submit(bom.ID, false)
	if err == nil {
		t.Fatal("Expected conflict on re-submitting a submitted version")
	}
	if KindOf(err) != FailureConflict {
		t.Errorf("KindOf = %q, want %q", KindOf(err), FailureConflict)
	}
}

func TestExplodeScalesAndMerges(t *testing.T) {
	services, db := newTestServices(t)
	testutil.SeedItem(t, db, "TEE-001", "基础T恤")
	seedBOMComponents(t, db)

	bom, err := services.BOM.CreateVersion(CreateBOMVersionRequest{
		ItemCode: "TEE-001",
		Items: []BOMLineInput{
			{ItemCode: "FABRIC-A", Quantity: 2, Rate: 3},
			{ItemCode: "BUTTON-B", Quantity: 5, Rate: 0.5},
		},
	}, "tester")
	if err != nil {
		t.Fatalf("CreateVersion failed: %v", err)
	}

	items, err := services.BOM.Explode(context.Background(), bom.ID, 10, false)
	if err != nil {
		t.Fatalf("Explode failed: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("Exploded items = %d, want 2", len(items))
	}
	// 按物料编码排序：BUTTON-B 在前
	if items[0].ItemCode != "BUTTON-B" || !almostEqual(items[0].Quantity, 50) {
		t.Errorf("Row 0 = %+v, want BUTTON-B x50", items[0])
	}
	if items[1].ItemCode != "FABRIC-A" || !almostEqual(items[1].Quantity, 20) {
		t.Errorf("Row 1 = %+v, want FABRIC-A x20", items[1])
	}
	if !almostEqual(items[1].Amount, 60) {
		t.Errorf("FABRIC-A amount = %v, want 60", items[1].Amount)
	}
}

func TestExplodeRecursesSubBOM(t *testing.T) {
	services, db := newTestServices(t)
	testutil.SeedItem(t, db, "TEE-001", "基础T恤")
	testutil.SeedItem(t, db, "COLLAR", "领子半成品")
	seedBOMComponents(t, db)

	subBOM, err := services.BOM.CreateVersion(CreateBOMVersionRequest{
		ItemCode: "COLLAR",
		Items: []BOMLineInput{
			{ItemCode: "FABRIC-A", Quantity: 0.5, Rate: 3},
			{ItemCode: "THREAD-C", Quantity: 2, Rate: 1},
		},
	}, "tester")
	if err != nil {
		t.Fatalf("CreateVersion sub failed: %v", err)
	}

	parent, err := services.BOM.CreateVersion(CreateBOMVersionRequest{
		ItemCode: "TEE-001",
		Items: []BOMLineInput{
			{ItemCode: "FABRIC-A", Quantity: 2, Rate: 3},
			{ItemCode: "COLLAR", Quantity: 1, BOMNo: subBOM.BOMCode},
		},
	}, "tester")
	if err != nil {
		t.Fatalf("CreateVersion parent failed: %v", err)
	}

	items, err := services.BOM.Explode(context.Background(), parent.ID, 4, false)
	if err != nil {
		t.Fatalf("Explode failed: %v", err)
	}
	// COLLAR 被展开成 FABRIC-A 与 THREAD-C；FABRIC-A 跨层合并
	if len(items) != 2 {
		t.Fatalf("Exploded items = %d, want 2 (sub-assembly expanded)", len(items))
	}
	if items[0].ItemCode != "FABRIC-A" || !almostEqual(items[0].Quantity, 10) {
		t.Errorf("FABRIC-A = %+v, want merged qty 10 (2x4 + 0.5x4)", items[0])
	}
	if items[1].ItemCode != "THREAD-C" || !almostEqual(items[1].Quantity, 8) {
		t.Errorf("THREAD-C = %+v, want qty 8", items[1])
	}
}

func TestExplodeSkipsNonStockItems(t *testing.T) {
	services, db := newTestServices(t)
	testutil.SeedItem(t, db, "TEE-001", "基础T恤")
	testutil.SeedItem(t, db, "FABRIC-A", "面料A")
	service := testutil.SeedItem(t, db, "OUTWORK", "外协加工费")
	service.IsStockItem = false
	if err := db.Save(service).Error; err != nil {
		t.Fatalf("Failed to update item: %v", err)
	}

	bom, err := services.BOM.CreateVersion(CreateBOMVersionRequest{
		ItemCode: "TEE-001",
		Items: []BOMLineInput{
			{ItemCode: "FABRIC-A", Quantity: 1},
			{ItemCode: "OUTWORK", Quantity: 1},
		},
	}, "tester")
	if err != nil {
		t.Fatalf("CreateVersion failed: %v", err)
	}

	items, err := services.BOM.Explode(context.Background(), bom.ID, 1, false)
	if err != nil {
		t.Fatalf("Explode failed: %v", err)
	}
	if len(items) != 1 || items[0].ItemCode != "FABRIC-A" {
		t.Errorf("Exploded = %+v, non-stock line should be skipped", items)
	}

	withAll, err := services.BOM.Explode(context.Background(), bom.ID, 1, true)
	if err != nil {
		t.Fatalf("Explode include_non_stock failed: %v", err)
	}
	if len(withAll) != 2 {
		t.Errorf("Exploded with non-stock = %d rows, want 2", len(withAll))
	}
}

func TestExplodeRejectsNonPositiveQty(t *testing.T) {
	services, _ := newTestServices(t)
	_, err := services.BOM.Explode(context.Background(), "any", 0, false)
	if err == nil {
		t.Fatal("Expected validation failure")
	}
	if KindOf(err) != FailureValidation {
		t.Errorf("KindOf = %q, want %q", KindOf(err), FailureValidation)
	}
}

func TestBulkCreateRejectsCycle(t *testing.T) {
	services, db := newTestServices(t)
	testutil.SeedItem(t, db, "PART-A", "部件A")
	testutil.SeedItem(t, db, "PART-B", "部件B")

	result, err := services.BOM.BulkCreateVersions([]CreateBOMVersionRequest{
		{ItemCode: "PART-A", Items: []BOMLineInput{{ItemCode: "PART-B", Quantity: 1}}},
		{ItemCode: "PART-B", Items: []BOMLineInput{{ItemCode: "PART-A", Quantity: 1}}},
	}, "tester")
	if err == nil {
		t.Fatal("Expected cycle failure")
	}
	if KindOf(err) != FailureCycleDetected {
		t.Errorf("KindOf = %q, want %q", KindOf(err), FailureCycleDetected)
	}
	if len(result.Failures) != 2 {
		t.Errorf("Failures = %d entries, want one per request", len(result.Failures))
	}
	if n := countRows(t, db, &entity.BOMVersion{}); n != 0 {
		t.Errorf("BOM versions = %d, want 0", n)
	}
}

func TestBulkCreateAtomicRollback(t *testing.T) {
	services, db := newTestServices(t)
	testutil.SeedItem(t, db, "TEE-001", "基础T恤")
	testutil.SeedItem(t, db, "FABRIC-A", "面料A")

	result, err := services.BOM.BulkCreateVersions([]CreateBOMVersionRequest{
		{ItemCode: "TEE-001", Items: []BOMLineInput{{ItemCode: "FABRIC-A", Quantity: 1}}},
		{ItemCode: "NO-SUCH-ITEM", Items: []BOMLineInput{{ItemCode: "FABRIC-A", Quantity: 1}}},
	}, "tester")
	if err == nil {
		t.Fatal("Expected dependency failure")
	}
	if KindOf(err) != FailureDependency {
		t.Errorf("KindOf = %q, want %q", KindOf(err), FailureDependency)
	}
	if len(result.Successes) != 0 {
		t.Errorf("Successes = %d, want 0 after rollback", len(result.Successes))
	}
	if len(result.Failures) != 1 || result.Failures[0].Index != 1 {
		t.Errorf("Failures = %+v, want single entry for index 1", result.Failures)
	}
	if n := countRows(t, db, &entity.BOMVersion{}); n != 0 {
		t.Errorf("BOM versions = %d, want 0", n)
	}
}

func TestBulkCreateSuccess(t *testing.T) {
	services, db := newTestServices(t)
	testutil.SeedItem(t, db, "TEE-001", "基础T恤")
	testutil.SeedItem(t, db, "TEE-002", "长袖T恤")
	testutil.SeedItem(t, db, "FABRIC-A", "面料A")

	result, err := services.BOM.BulkCreateVersions([]CreateBOMVersionRequest{
		{ItemCode: "TEE-001", Items: []BOMLineInput{{ItemCode: "FABRIC-A", Quantity: 1}}},
		{ItemCode: "TEE-002", Items: []BOMLineInput{{ItemCode: "FABRIC-A", Quantity: 2}}},
	}, "tester")
	if err != nil {
		t.Fatalf("BulkCreateVersions failed: %v", err)
	}
	if len(result.Successes) != 2 || len(result.Failures) != 0 {
		t.Errorf("Result = %+v, want 2 successes", result)
	}
	if n := countRows(t, db, &entity.BOMVersion{}); n != 2 {
		t.Errorf("BOM versions = %d, want 2", n)
	}
}

func TestStructureSummary(t *testing.T) {
	services, db := newTestServices(t)
	testutil.SeedItem(t, db, "TEE-001", "基础T恤")
	testutil.SeedItem(t, db, "FABRIC-A", "面料A")

	if _, err := services.BOM.CreateVersion(CreateBOMVersionRequest{
		ItemCode: "TEE-001",
		Items:    []BOMLineInput{{ItemCode: "FABRIC-A", Quantity: 2, Rate: 3}},
	}, "tester"); err != nil {
		t.Fatalf("CreateVersion v1 failed: %v", err)
	}
	v2, err := services.BOM.CreateVersion(CreateBOMVersionRequest{
		ItemCode:  "TEE-001",
		Items:     []BOMLineInput{{ItemCode: "FABRIC-A", Quantity: 3, Rate: 3}},
		IsDefault: true,
	}, "tester")
	if err != nil {
		t.Fatalf("CreateVersion v2 failed: %v", err)
	}

	summary, err := services.BOM.GetStructureSummary("TEE-001")
	if err != nil {
		t.Fatalf("GetStructureSummary failed: %v", err)
	}
	if summary.VersionCount != 2 {
		t.Errorf("VersionCount = %d, want 2", summary.VersionCount)
	}
	if summary.DefaultBOMID != v2.ID || summary.DefaultBOMCode != v2.BOMCode {
		t.Errorf("Default = %s/%s, want %s/%s", summary.DefaultBOMID, summary.DefaultBOMCode, v2.ID, v2.BOMCode)
	}
	if !almostEqual(summary.TotalCost, 9) {
		t.Errorf("TotalCost = %v, want 9", summary.TotalCost)
	}
	if summary.LineItemCount != 1 {
		t.Errorf("LineItemCount = %d, want 1", summary.LineItemCount)
	}
}
