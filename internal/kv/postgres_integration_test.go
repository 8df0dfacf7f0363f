//go:build integration

package kv_test

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"kcal/internal/db"
	"kcal/internal/kv"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

var (
	once    sync.Once
	testDSN string
	initErr error
)

// newPostgresStore starts one Postgres container per test run and returns a
// store on a fresh table of it.
func newPostgresStore(t *testing.T) *kv.Postgres {
	t.Helper()

	once.Do(func() {
		testDSN, initErr = startPostgres()
	})
	if initErr != nil {
		t.Fatalf("setup postgres: %v", initErr)
	}

	gdb, err := db.Connect(testDSN)
	require.NoError(t, err)

	table := fmt.Sprintf("kv_test_%d", time.Now().UnixNano())
	require.NoError(t, db.AutoMigrateAndIndexes(gdb, table))

	t.Cleanup(func() {
		_ = gdb.Migrator().DropTable(table)
		if sqlDB, err := gdb.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return kv.NewPostgres(gdb, table)
}

func startPostgres() (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:17-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "kcal",
				"POSTGRES_PASSWORD": "kcal",
				"POSTGRES_DB":       "kcal",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		return "", fmt.Errorf("start container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		return "", fmt.Errorf("get container host: %w", err)
	}
	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		return "", fmt.Errorf("get mapped port: %w", err)
	}

	return fmt.Sprintf("postgres://kcal:kcal@%s:%s/kcal?sslmode=disable", host, port.Port()), nil
}

func TestPostgres_GetSetDelete(t *testing.T) {
	ctx := context.Background()
	s := newPostgresStore(t)

	_, err := s.Get(ctx, "user:u1")
	assert.ErrorIs(t, err, kv.ErrNotFound)

	require.NoError(t, s.Set(ctx, "user:u1", json.RawMessage(`{"userId":"u1"}`)))
	require.NoError(t, s.Set(ctx, "user:u1", json.RawMessage(`{"userId":"u1","username":"Asha"}`)))

	v, err := s.Get(ctx, "user:u1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"userId":"u1","username":"Asha"}`, string(v))

	require.NoError(t, s.Delete(ctx, "user:u1"))
	_, err = s.Get(ctx, "user:u1")
	assert.ErrorIs(t, err, kv.ErrNotFound)
}

func TestPostgres_MGet(t *testing.T) {
	ctx := context.Background()
	s := newPostgresStore(t)

	require.NoError(t, s.Set(ctx, "a", json.RawMessage(`1`)))
	require.NoError(t, s.Set(ctx, "b", json.RawMessage(`2`)))

	got, err := s.MGet(ctx, []string{"a", "b", "missing"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.JSONEq(t, `1`, string(got["a"]))
	assert.JSONEq(t, `2`, string(got["b"]))

	empty, err := s.MGet(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestPostgres_ScanTreatsPrefixLiterally(t *testing.T) {
	ctx := context.Background()
	s := newPostgresStore(t)

	for _, k := range []string{
		"daily_summary:u1:2024-03-17",
		"daily_summary:u1:2024-03-05",
		"daily_summary:u1:2024-04-01",
		"dailyXsummary:u1:2024-03-09",
		"daily_summary:u10:2024-03-01",
	} {
		require.NoError(t, s.Set(ctx, k, json.RawMessage(`{}`)))
	}

	got, err := s.Scan(ctx, "daily_summary:u1:2024-03")
	require.NoError(t, err)

	keys := make([]string, 0, len(got))
	for _, e := range got {
		keys = append(keys, e.Key)
	}
	assert.Equal(t, []string{"daily_summary:u1:2024-03-05", "daily_summary:u1:2024-03-17"}, keys)
}

func TestPostgres_UpdateSerializesWriters(t *testing.T) {
	ctx := context.Background()
	s := newPostgresStore(t)

	// the first insert of an absent key is not locked, so start from a stored row
	require.NoError(t, kv.SetJSON(ctx, s, "counter", 0))

	const writers = 20
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := kv.UpdateJSON(ctx, s, "counter", func(n int, _ bool) (int, bool, error) {
				return n + 1, true, nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	n, found, err := kv.GetJSON[int](ctx, s, "counter")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, writers, n)
}

func TestPostgres_UpdateNoWriteAndError(t *testing.T) {
	ctx := context.Background()
	s := newPostgresStore(t)

	require.NoError(t, s.Update(ctx, "k", func(cur json.RawMessage) (json.RawMessage, error) {
		assert.Nil(t, cur)
		return nil, nil
	}))
	_, err := s.Get(ctx, "k")
	assert.ErrorIs(t, err, kv.ErrNotFound)

	boom := fmt.Errorf("boom")
	err = s.Update(ctx, "k", func(json.RawMessage) (json.RawMessage, error) {
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)
}
