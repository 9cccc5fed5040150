package testutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/guinanlin/rongguan-erp/internal/erp/entity"
	"github.com/guinanlin/rongguan-erp/internal/middleware"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const JWTSecret = "rongguan-erp-jwt-secret-2024"

// SetupTestDB 为每个测试建立独立的内存数据库
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:test_%s?mode=memory&cache=shared", uuid.New().String()[:8])
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("Failed to get database instance: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := entity.AutoMigrate(db); err != nil {
		t.Fatalf("Failed to migrate test tables: %v", err)
	}

	t.Cleanup(func() {
		sqlDB.Close()
	})
	return db
}

// SetupRouter creates a gin test router
func SetupRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(gin.Recovery())
	return r
}

// AuthGroup creates an API group with JWT auth middleware for testing
func AuthGroup(r *gin.Engine, path string) *gin.RouterGroup {
	return r.Group(path, middleware.JWTAuth(JWTSecret))
}

// GenerateTestToken creates a valid JWT token for testing
func GenerateTestToken(userID, name, email string, roles, permissions []string) string {
	if roles == nil {
		roles = []string{}
	}
	if permissions == nil {
		permissions = []string{}
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   userID,
		"uid":   userID,
		"name":  name,
		"email": email,
		"roles": roles,
		"perms": permissions,
		"iss":   "rongguan-erp",
		"iat":   now.Unix(),
		"exp":   now.Add(24 * time.Hour).Unix(),
		"jti":   fmt.Sprintf("test-jti-%d", now.UnixNano()),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, _ := token.SignedString([]byte(JWTSecret))
	return tokenString
}

// DefaultTestToken returns a token for a default admin test user
func DefaultTestToken() string {
	return GenerateTestToken(
		"test-user-001",
		"Test Admin",
		"admin@test.com",
		[]string{"erp_admin"},
		[]string{"*"},
	)
}

// DoRequest executes an HTTP request against the test router
func DoRequest(r *gin.Engine, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer
	if body != nil {
		jsonBytes, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(jsonBytes)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req, _ := http.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// ParseResponse parses the JSON response body into a map
func ParseResponse(w *httptest.ResponseRecorder) map[string]interface{} {
	var result map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &result)
	return result
}

// --- Seed helpers ---

// SeedCompany creates a company record
func SeedCompany(t *testing.T, db *gorm.DB, name string) *entity.Company {
	t.Helper()
	company := &entity.Company{
		ID:       uuid.New().String(),
		Name:     name,
		Currency: "CNY",
	}
	if err := db.Create(company).Error; err != nil {
		t.Fatalf("Failed to seed company: %v", err)
	}
	return company
}

// SeedCustomer creates a customer record
func SeedCustomer(t *testing.T, db *gorm.DB, name string) *entity.Customer {
	t.Helper()
	customer := &entity.Customer{
		ID:           uuid.New().String(),
		CustomerCode: "CUS-" + uuid.New().String()[:8],
		Name:         name,
		Status:       entity.CustomerStatusActive,
	}
	if err := db.Create(customer).Error; err != nil {
		t.Fatalf("Failed to seed customer: %v", err)
	}
	return customer
}

// SeedAttributeMasters creates the 颜色/尺码 attribute masters used by the tag convention
func SeedAttributeMasters(t *testing.T, db *gorm.DB) {
	t.Helper()
	masters := []entity.ItemAttribute{
		{ID: uuid.New().String(), Name: "颜色", Tags: "颜色,外观"},
		{ID: uuid.New().String(), Name: "尺码", Tags: "尺码,规格"},
	}
	for i := range masters {
		if err := db.Create(&masters[i]).Error; err != nil {
			t.Fatalf("Failed to seed attribute master: %v", err)
		}
	}
}

// SeedItem creates a plain item master
func SeedItem(t *testing.T, db *gorm.DB, code, name string) *entity.Item {
	t.Helper()
	item := &entity.Item{
		ID:               uuid.New().String(),
		ItemCode:         code,
		ItemName:         name,
		UOM:              "件",
		StockUOM:         "件",
		ConversionFactor: 1,
		IsStockItem:      true,
		Status:           entity.ItemStatusActive,
	}
	if err := db.Create(item).Error; err != nil {
		t.Fatalf("Failed to seed item: %v", err)
	}
	return item
}

// SeedVariantItem creates an item carrying color/size variant attributes
func SeedVariantItem(t *testing.T, db *gorm.DB, code, color, size string) *entity.Item {
	t.Helper()
	item := SeedItem(t, db, code, "变体 "+code)
	attrs := []entity.ItemVariantAttribute{
		{ID: uuid.New().String(), ItemCode: code, Idx: 1, Attribute: "颜色", AttributeValue: color},
		{ID: uuid.New().String(), ItemCode: code, Idx: 2, Attribute: "尺码", AttributeValue: size},
	}
	for i := range attrs {
		if attrs[i].AttributeValue == "" {
			continue
		}
		if err := db.Create(&attrs[i]).Error; err != nil {
			t.Fatalf("Failed to seed variant attribute: %v", err)
		}
	}
	return item
}

// SeedUser creates a system user
func SeedUser(t *testing.T, db *gorm.DB, email, name string) *entity.User {
	t.Helper()
	user := &entity.User{
		ID:     uuid.New().String(),
		Email:  email,
		Name:   name,
		Status: "ACTIVE",
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("Failed to seed user: %v", err)
	}
	return user
}

// SeedEmployee creates an employee optionally linked to a user email
func SeedEmployee(t *testing.T, db *gorm.DB, empCode, name, userEmail string) *entity.Employee {
	t.Helper()
	emp := &entity.Employee{
		ID:        uuid.New().String(),
		EmpCode:   empCode,
		Name:      name,
		UserEmail: userEmail,
		Status:    "ACTIVE",
	}
	if err := db.Create(emp).Error; err != nil {
		t.Fatalf("Failed to seed employee: %v", err)
	}
	return emp
}
