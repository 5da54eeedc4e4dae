//go:build integration

package storage

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/redis"
)

// setupRedisContainer starts a Redis container for testing
func setupRedisContainer(t *testing.T) string {
	t.Helper()

	ctx := context.Background()

	redisContainer, err := redis.Run(ctx, "redis:7-alpine")
	if err != nil {
		t.Fatalf("failed to start redis container: %v", err)
	}

	endpoint, err := redisContainer.ConnectionString(ctx)
	if err != nil {
		t.Fatalf("failed to get redis endpoint: %v", err)
	}

	// Strip "redis://" prefix if present
	addr := endpoint
	if len(endpoint) > 8 && endpoint[:8] == "redis://" {
		addr = endpoint[8:]
	}

	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(redisContainer); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	return addr
}

func TestRedisStore_NewRedisStore_Success(t *testing.T) {
	addr := setupRedisContainer(t)

	store, err := NewRedisStore(addr, "", 0, time.Minute)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	defer store.Close()

	if err := store.Ping(context.Background()); err != nil {
		t.Errorf("Ping failed: %v", err)
	}
}

func TestRedisStore_NewRedisStore_EmptyAddr(t *testing.T) {
	_, err := NewRedisStore("", "", 0, time.Minute)
	if err == nil {
		t.Fatal("expected error for empty address, got nil")
	}
}

func TestRedisStore_NewRedisStore_InvalidDB(t *testing.T) {
	_, err := NewRedisStore("localhost:6379", "", -1, time.Minute)
	if err == nil {
		t.Fatal("expected error for negative db number, got nil")
	}
}

func TestRedisStore_PutGet_RoundTrip(t *testing.T) {
	addr := setupRedisContainer(t)

	store, err := NewRedisStore(addr, "", 0, time.Minute)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	original := testRecord("GSMF", []float64{3, 0.5, 1, 0.7, 0.1}, 100)
	original.GeneratedAt = original.GeneratedAt.Truncate(time.Second)

	if err := store.Put(ctx, original); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	retrieved, found, err := store.Get(ctx, original.Key)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !found {
		t.Fatal("expected record to be found")
	}

	if retrieved.Statistic != original.Statistic {
		t.Errorf("statistic mismatch: got %s, want %s", retrieved.Statistic, original.Statistic)
	}
	if len(retrieved.Result.Mean) != len(original.Result.Mean) {
		t.Fatalf("mean length mismatch: got %d, want %d",
			len(retrieved.Result.Mean), len(original.Result.Mean))
	}
	for i := range original.Result.Mean {
		if retrieved.Result.Mean[i] != original.Result.Mean[i] {
			t.Errorf("mean[%d] mismatch: got %f, want %f",
				i, retrieved.Result.Mean[i], original.Result.Mean[i])
		}
	}
}

func TestRedisStore_Get_NotFound(t *testing.T) {
	addr := setupRedisContainer(t)

	store, err := NewRedisStore(addr, "", 0, time.Minute)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	defer store.Close()

	record, found, err := store.Get(context.Background(), "GSMF:nonexistent")
	if err != nil {
		t.Errorf("expected no error, got %v", err)
	}
	if found {
		t.Error("expected record not to be found")
	}
	if record.Key != "" {
		t.Error("expected zero-value record")
	}
}

func TestRedisStore_Put_EmptyKey(t *testing.T) {
	addr := setupRedisContainer(t)

	store, err := NewRedisStore(addr, "", 0, time.Minute)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	defer store.Close()

	if err := store.Put(context.Background(), Record{}); err == nil {
		t.Fatal("expected error for empty key, got nil")
	}
}

func TestRedisStore_TTL_Expiration(t *testing.T) {
	addr := setupRedisContainer(t)

	store, err := NewRedisStore(addr, "", 0, 2*time.Second)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	record := testRecord("Pk", []float64{3, 0.5, 1, 0.7, 0.1}, 100)

	if err := store.Put(ctx, record); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	if _, found, _ := store.Get(ctx, record.Key); !found {
		t.Fatal("expected record to be found immediately after Put")
	}

	time.Sleep(3 * time.Second)

	if _, found, _ := store.Get(ctx, record.Key); found {
		t.Error("expected record to be expired")
	}
}

func TestRedisStore_Concurrency(t *testing.T) {
	addr := setupRedisContainer(t)

	store, err := NewRedisStore(addr, "", 0, time.Minute)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	defer store.Close()

	ctx := context.Background()

	var wg sync.WaitGroup
	for i := range 10 {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for j := range 10 {
				record := testRecord("GSMF", []float64{float64(id), float64(j), 1, 1, 1}, 100)
				if err := store.Put(ctx, record); err != nil {
					t.Errorf("Put failed in goroutine %d: %v", id, err)
				}
			}
		}(i)
	}
	wg.Wait()

	for i := range 10 {
		for j := range 10 {
			key := Key("GSMF", 0, []float64{float64(i), float64(j), 1, 1, 1}, 100)
			_, found, err := store.Get(ctx, key)
			if err != nil {
				t.Errorf("Get failed: %v", err)
			}
			if !found {
				t.Errorf("record not found for %s", fmt.Sprintf("%d/%d", i, j))
			}
		}
	}
}

func TestRedisStore_Close_Idempotent(t *testing.T) {
	addr := setupRedisContainer(t)

	store, err := NewRedisStore(addr, "", 0, time.Minute)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}

	if err := store.Close(); err != nil {
		t.Errorf("first Close failed: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Errorf("second Close failed: %v", err)
	}
}
