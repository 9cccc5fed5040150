package service

import (
	"testing"

	"github.com/guinanlin/rongguan-erp/internal/erp/repository"
	"github.com/guinanlin/rongguan-erp/internal/erp/testutil"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestServices(t *testing.T) (*Services, *gorm.DB) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	repos := repository.NewRepositories(db)
	return NewServices(repos, nil, zap.NewNop(), "", ""), db
}

func countRows(t *testing.T, db *gorm.DB, model interface{}) int64 {
	t.Helper()
	var n int64
	if err := db.Model(model).Count(&n).Error; err != nil {
		t.Fatalf("Failed to count rows: %v", err)
	}
	return n
}
