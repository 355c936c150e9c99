package repository

import (
	"context"
	"testing"

	"github.com/blues/memberadmin/internal/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChecker struct {
	name    string
	healthy bool
}

func (f fakeChecker) Name() string { return f.name }

func (f fakeChecker) Check(ctx context.Context) Status {
	return Status{Name: f.name, Healthy: f.healthy}
}

func TestGormCheckerSqlite(t *testing.T) {
	db := testutil.OpenDB(t)

	status := NewGormChecker(db).Check(context.Background())
	assert.True(t, status.Healthy, status.Error)
	assert.Equal(t, "sqlite", status.Name)
}

func TestGormCheckerClosedDB(t *testing.T) {
	db := testutil.OpenDB(t)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	status := NewGormChecker(db).Check(context.Background())
	assert.False(t, status.Healthy)
	assert.NotEmpty(t, status.Error)
}

func TestRedisCheckerUnreachable(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1})
	defer client.Close()

	status := NewRedisChecker(client).Check(context.Background())
	assert.False(t, status.Healthy)
	assert.Equal(t, "redis", status.Name)
}

func TestRegistryCheckAll(t *testing.T) {
	reg := NewRegistry(0, fakeChecker{"postgres", true})
	results, ok := reg.CheckAll(context.Background())
	assert.True(t, ok)
	require.Len(t, results, 1)

	reg.Register(fakeChecker{"redis", false})
	results, ok = reg.CheckAll(context.Background())
	assert.False(t, ok)
	require.Len(t, results, 2)
	assert.Equal(t, "redis", results[1].Name)
}
