package gormsource

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/recliq/go-backoffice/components/backoffice"
	"github.com/recliq/go-backoffice/components/backoffice/tableview"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func TestSeedIsIdempotent(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	require.NoError(t, Seed(ctx, db))
	require.NoError(t, Seed(ctx, db))

	var count int64
	require.NoError(t, db.Model(&backoffice.Payment{}).Count(&count).Error)
	assert.Equal(t, int64(26), count)
	require.NoError(t, db.Model(&backoffice.ActiveUser{}).Count(&count).Error)
	assert.Equal(t, int64(24), count)
}

func TestFetchPushesDownMappedFilters(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	require.NoError(t, Seed(ctx, db))

	src, err := New[backoffice.Payment](db, map[string]string{"status": "status"})
	require.NoError(t, err)

	all, err := src.Fetch(ctx, nil)
	require.NoError(t, err)
	require.Len(t, all, 26)
	assert.Equal(t, "PAY-1001", all[0].ID)
	assert.Equal(t, backoffice.SamplePayments()[0].Amount, all[0].Amount)

	failed, err := src.Fetch(ctx, map[string]string{"status": "failed", "customer": "ignored"})
	require.NoError(t, err)
	require.Len(t, failed, 4)
	for _, p := range failed {
		assert.Equal(t, backoffice.PaymentFailed, p.Status)
	}
}

func TestNewRequiresDB(t *testing.T) {
	_, err := New[backoffice.Payment](nil, nil)
	require.Error(t, err)
}

func TestServiceOverDatabaseSources(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	require.NoError(t, Seed(ctx, db))

	log := backoffice.NewActionLog()
	src, err := Sources(db, log)
	require.NoError(t, err)
	registry, err := backoffice.NewDefaultRegistry(src)
	require.NoError(t, err)

	service := backoffice.NewService(backoffice.Options{Registry: registry, ActionHandler: log})
	viewer := backoffice.ViewerContext{UserID: "op-1", Roles: []string{"operations"}}

	page, err := service.QueryTable(ctx, viewer, backoffice.TableFraudFlags, tableview.Query{
		Page:    1,
		Filters: map[string]string{"status": "open"},
	})
	require.NoError(t, err)
	assert.Equal(t, 4, page.TotalCount)

	page, err = service.QueryTable(ctx, viewer, backoffice.TableAgents, tableview.Query{Page: 1, Filters: map[string]string{"region": "Lagos"}})
	require.NoError(t, err)
	assert.Equal(t, 2, page.TotalCount)
}
