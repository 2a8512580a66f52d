package cache

import (
	"context"
	"net/url"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

// setupTestRedis creates a test Redis client, skipping when Redis is
// not reachable.
func setupTestRedis(t *testing.T) *redis.Client {
	t.Helper()

	client := redis.NewClient(&redis.Options{
		Addr: "localhost:6379",
		DB:   15, // Use a separate DB for tests
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("Redis not available for testing: %v", err)
	}

	if err := client.FlushDB(ctx).Err(); err != nil {
		t.Fatalf("Failed to flush test DB: %v", err)
	}

	t.Cleanup(func() {
		client.FlushDB(context.Background())
		client.Close()
	})

	return client
}

func testKey(page string) Key {
	return Key{
		Endpoint:    "/api/coins/research/groups/",
		QueryParams: url.Values{"page": []string{page}},
	}
}

func TestManager_GetMiss(t *testing.T) {
	manager := NewManager(setupTestRedis(t), time.Minute)

	_, err := manager.Get(context.Background(), testKey("1"))
	if err != ErrCacheMiss {
		t.Errorf("Get() error = %v, want ErrCacheMiss", err)
	}
}

func TestManager_SetGetRoundTrip(t *testing.T) {
	manager := NewManager(setupTestRedis(t), time.Minute)
	ctx := context.Background()
	key := testKey("1")

	body := []byte(`{"Items": [{"researchGroupID": 42}], "ShowNextPage": false}`)
	if err := manager.Set(ctx, key, NewEntry(body, 200, time.Minute)); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	got, err := manager.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if string(got.Data) != string(body) {
		t.Errorf("Data = %q, want %q", got.Data, body)
	}
	if got.StatusCode != 200 {
		t.Errorf("StatusCode = %d, want 200", got.StatusCode)
	}
}

func TestManager_ExpiredEntryIsMiss(t *testing.T) {
	redisClient := setupTestRedis(t)
	manager := NewManager(redisClient, time.Minute)
	ctx := context.Background()
	key := testKey("1")

	// Write an already-stale entry directly; Set refuses expired entries.
	entry := NewEntry([]byte("{}"), 200, time.Minute)
	entry.Expires = time.Now().Add(-time.Second)
	data := `{"data":"e30=","status_code":200,"expires":"` +
		entry.Expires.Format(time.RFC3339Nano) + `","cached_at":"` +
		entry.CachedAt.Format(time.RFC3339Nano) + `"}`
	if err := redisClient.Set(ctx, key.String(), data, time.Minute).Err(); err != nil {
		t.Fatalf("redis set: %v", err)
	}

	if _, err := manager.Get(ctx, key); err != ErrCacheMiss {
		t.Errorf("Get() error = %v, want ErrCacheMiss for expired entry", err)
	}
}

func TestManager_SetSkipsExpired(t *testing.T) {
	manager := NewManager(setupTestRedis(t), time.Minute)
	ctx := context.Background()
	key := testKey("1")

	entry := NewEntry([]byte("{}"), 200, -time.Second)
	if err := manager.Set(ctx, key, entry); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	if _, err := manager.Get(ctx, key); err != ErrCacheMiss {
		t.Errorf("Get() error = %v, want ErrCacheMiss (expired entry must not be stored)", err)
	}
}

func TestManager_Delete(t *testing.T) {
	manager := NewManager(setupTestRedis(t), time.Minute)
	ctx := context.Background()
	key := testKey("1")

	if err := manager.Set(ctx, key, NewEntry([]byte("{}"), 200, time.Minute)); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := manager.Delete(ctx, key); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := manager.Get(ctx, key); err != ErrCacheMiss {
		t.Errorf("Get() after Delete() error = %v, want ErrCacheMiss", err)
	}
}

func TestManager_SetNilEntry(t *testing.T) {
	manager := NewManager(setupTestRedis(t), time.Minute)

	if err := manager.Set(context.Background(), testKey("1"), nil); err == nil {
		t.Error("Set(nil) error = nil, want non-nil")
	}
}
