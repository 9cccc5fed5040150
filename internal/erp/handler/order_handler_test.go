package handler

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/guinanlin/rongguan-erp/internal/erp/repository"
	"github.com/guinanlin/rongguan-erp/internal/erp/service"
	"github.com/guinanlin/rongguan-erp/internal/erp/testutil"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupTestAPI(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	repos := repository.NewRepositories(db)
	services := service.NewServices(repos, nil, zap.NewNop(), "", "")
	handlers := NewHandlers(services)

	r := testutil.SetupRouter()
	v1 := testutil.AuthGroup(r, "/api/v1/erp")
	{
		v1.POST("/orders", handlers.Order.CreateChain)
		v1.GET("/production-orders", handlers.Order.ListProductionOrders)
		v1.GET("/production-orders/materials", handlers.Order.ListMaterials)
		v1.GET("/production-orders/:id", handlers.Order.GetProductionOrder)
		v1.POST("/boms", handlers.BOM.Create)
		v1.POST("/boms/bulk", handlers.BOM.BulkCreate)
	}
	return r, db
}

func seedOrderAPIBase(t *testing.T, db *gorm.DB) string {
	t.Helper()
	testutil.SeedAttributeMasters(t, db)
	testutil.SeedCompany(t, db, "荣冠制衣")
	testutil.SeedVariantItem(t, db, "TEE-RED-M", "红色", "M")
	customer := testutil.SeedCustomer(t, db, "测试客户")
	return customer.ID
}

func TestCreateOrderChainEndpoint(t *testing.T) {
	r, db := setupTestAPI(t)
	customerID := seedOrderAPIBase(t, db)
	token := testutil.DefaultTestToken()

	body := map[string]interface{}{
		"customer_id": customerID,
		"company":     "荣冠制衣",
		"items": []map[string]interface{}{
			{"item_code": "TEE-RED-M", "quantity": 5, "rate": 10},
		},
	}
	w := testutil.DoRequest(r, http.MethodPost, "/api/v1/erp/orders", body, token)
	if w.Code != http.StatusOK {
		t.Fatalf("Status = %d, body = %s", w.Code, w.Body.String())
	}

	resp := testutil.ParseResponse(w)
	if resp["code"].(float64) != 0 {
		t.Errorf("code = %v, want 0", resp["code"])
	}
	data := resp["data"].(map[string]interface{})
	if data["so_code"] == "" || data["po_code"] == "" {
		t.Errorf("data = %v, want so_code and po_code", data)
	}

	// 创建的生产订单可以查回来
	poID := data["production_order_id"].(string)
	w = testutil.DoRequest(r, http.MethodGet, "/api/v1/erp/production-orders/"+poID, nil, token)
	if w.Code != http.StatusOK {
		t.Errorf("GetProductionOrder status = %d", w.Code)
	}
}

func TestCreateOrderChainRequiresAuth(t *testing.T) {
	r, db := setupTestAPI(t)
	customerID := seedOrderAPIBase(t, db)

	body := map[string]interface{}{
		"customer_id": customerID,
		"company":     "荣冠制衣",
		"items":       []map[string]interface{}{{"item_code": "TEE-RED-M", "quantity": 1}},
	}
	w := testutil.DoRequest(r, http.MethodPost, "/api/v1/erp/orders", body, "")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("Status = %d, want 401", w.Code)
	}
}

func TestCreateOrderChainResolutionFailureStatus(t *testing.T) {
	r, db := setupTestAPI(t)
	customerID := seedOrderAPIBase(t, db)
	token := testutil.DefaultTestToken()

	body := map[string]interface{}{
		"customer_id": customerID,
		"company":     "荣冠制衣",
		"items":       []map[string]interface{}{{"item_code": "RAW-FABRIC", "quantity": 1}},
	}
	w := testutil.DoRequest(r, http.MethodPost, "/api/v1/erp/orders", body, token)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("Status = %d, want 400, body = %s", w.Code, w.Body.String())
	}
	resp := testutil.ParseResponse(w)
	if resp["kind"] != string(service.FailureResolution) {
		t.Errorf("kind = %v, want %s", resp["kind"], service.FailureResolution)
	}
	if resp["code"].(float64) != 10005 {
		t.Errorf("code = %v, want 10005", resp["code"])
	}
}

func TestCreateOrderChainUnknownCustomerStatus(t *testing.T) {
	r, db := setupTestAPI(t)
	seedOrderAPIBase(t, db)
	token := testutil.DefaultTestToken()

	body := map[string]interface{}{
		"customer_id": "missing",
		"company":     "荣冠制衣",
		"items":       []map[string]interface{}{{"item_code": "TEE-RED-M", "quantity": 1}},
	}
	w := testutil.DoRequest(r, http.MethodPost, "/api/v1/erp/orders", body, token)
	if w.Code != http.StatusNotFound {
		t.Errorf("Status = %d, want 404", w.Code)
	}
}

func TestBulkBOMCycleEndpoint(t *testing.T) {
	r, db := setupTestAPI(t)
	testutil.SeedItem(t, db, "PART-A", "部件A")
	testutil.SeedItem(t, db, "PART-B", "部件B")
	token := testutil.DefaultTestToken()

	body := map[string]interface{}{
		"versions": []map[string]interface{}{
			{"item_code": "PART-A", "items": []map[string]interface{}{{"item_code": "PART-B", "quantity": 1}}},
			{"item_code": "PART-B", "items": []map[string]interface{}{{"item_code": "PART-A", "quantity": 1}}},
		},
	}
	w := testutil.DoRequest(r, http.MethodPost, "/api/v1/erp/boms/bulk", body, token)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("Status = %d, want 400, body = %s", w.Code, w.Body.String())
	}
	resp := testutil.ParseResponse(w)
	if resp["kind"] != string(service.FailureCycleDetected) {
		t.Errorf("kind = %v, want %s", resp["kind"], service.FailureCycleDetected)
	}
	// 失败时仍带逐项诊断
	data, ok := resp["data"].(map[string]interface{})
	if !ok {
		t.Fatalf("data missing: %v", resp)
	}
	failures, ok := data["failures"].([]interface{})
	if !ok || len(failures) != 2 {
		t.Errorf("failures = %v, want 2 entries", data["failures"])
	}
}

func TestListProductionOrdersEndpoint(t *testing.T) {
	r, db := setupTestAPI(t)
	customerID := seedOrderAPIBase(t, db)
	token := testutil.DefaultTestToken()

	body := map[string]interface{}{
		"customer_id": customerID,
		"company":     "荣冠制衣",
		"items":       []map[string]interface{}{{"item_code": "TEE-RED-M", "quantity": 2}},
	}
	if w := testutil.DoRequest(r, http.MethodPost, "/api/v1/erp/orders", body, token); w.Code != http.StatusOK {
		t.Fatalf("CreateChain status = %d", w.Code)
	}

	w := testutil.DoRequest(r, http.MethodGet, "/api/v1/erp/production-orders?page=1&size=10", nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("List status = %d", w.Code)
	}
	resp := testutil.ParseResponse(w)
	data := resp["data"].(map[string]interface{})
	if data["total"].(float64) != 1 {
		t.Errorf("total = %v, want 1", data["total"])
	}

	w = testutil.DoRequest(r, http.MethodGet, "/api/v1/erp/production-orders/materials?page=1&size=10", nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("ListMaterials status = %d", w.Code)
	}
	resp = testutil.ParseResponse(w)
	data = resp["data"].(map[string]interface{})
	if data["total"].(float64) != 1 {
		t.Errorf("materials total = %v, want 1", data["total"])
	}
}
