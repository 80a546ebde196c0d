package cache

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set error: %v", err)
	}
	data, hit, err := c.Get(ctx, "key")
	if err != nil || hit || data != nil {
		t.Errorf("Get() = %q, %v, %v; want miss", data, hit, err)
	}
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
}

func TestHash(t *testing.T) {
	h1 := Hash([]byte("hello"))
	if h1 != Hash([]byte("hello")) {
		t.Error("Hash should be deterministic")
	}
	if h1 == Hash([]byte("world")) {
		t.Error("Different inputs should produce different hashes")
	}
	if len(h1) != 64 {
		t.Errorf("Hash length should be 64, got %d", len(h1))
	}
}

// backends runs fn against every persistent backend.
func backends(t *testing.T, fn func(t *testing.T, c Cache)) {
	t.Run("file", func(t *testing.T) {
		c, err := NewFileCache(t.TempDir())
		if err != nil {
			t.Fatalf("NewFileCache: %v", err)
		}
		fn(t, c)
	})
	t.Run("redis", func(t *testing.T) {
		mr := miniredis.RunT(t)
		c, err := NewRedisCache(context.Background(), "redis://"+mr.Addr())
		if err != nil {
			t.Fatalf("NewRedisCache: %v", err)
		}
		defer c.Close()
		fn(t, c)
	})
}

func TestBackends_GetSetDelete(t *testing.T) {
	backends(t, func(t *testing.T, c Cache) {
		ctx := context.Background()

		if _, hit, err := c.Get(ctx, "missing"); hit || err != nil {
			t.Fatalf("Get(missing) hit=%v err=%v", hit, err)
		}
		if err := c.Set(ctx, "k", []byte("https://images.example.com/a.jpg"), time.Hour); err != nil {
			t.Fatalf("Set: %v", err)
		}
		data, hit, err := c.Get(ctx, "k")
		if err != nil || !hit || string(data) != "https://images.example.com/a.jpg" {
			t.Fatalf("Get(k) = %q, %v, %v", data, hit, err)
		}
		if err := c.Delete(ctx, "k"); err != nil {
			t.Fatalf("Delete: %v", err)
		}
		if _, hit, _ := c.Get(ctx, "k"); hit {
			t.Error("Get after Delete should miss")
		}
		if err := c.Delete(ctx, "k"); err != nil {
			t.Errorf("Delete of missing key: %v", err)
		}
	})
}

func TestFileCache_Expiration(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())

	if err := c.Set(ctx, "key", []byte("v"), 10*time.Millisecond); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "key"); !hit {
		t.Fatal("fresh entry should hit")
	}
	time.Sleep(20 * time.Millisecond)
	if _, hit, err := c.Get(ctx, "key"); hit || err != nil {
		t.Errorf("expired Get hit=%v err=%v", hit, err)
	}
	if _, err := os.Stat(c.path("key")); !os.IsNotExist(err) {
		t.Error("expired entry should be removed")
	}
}

func TestFileCache_CorruptEntry(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())
	path := c.path("key")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, hit, err := c.Get(ctx, "key"); hit || err != nil {
		t.Errorf("corrupt Get hit=%v err=%v; want clean miss", hit, err)
	}
}

func TestFileCache_Clear(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())
	for _, k := range []string{"a", "b", "c"} {
		if err := c.Set(ctx, k, []byte(k), 0); err != nil {
			t.Fatal(err)
		}
	}
	n, err := c.Clear()
	if err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if n != 3 {
		t.Errorf("Clear() = %d, want 3", n)
	}
	if _, hit, _ := c.Get(ctx, "a"); hit {
		t.Error("entry survived Clear")
	}
	if _, err := os.Stat(c.Dir()); err != nil {
		t.Errorf("root removed: %v", err)
	}
}

func TestRedisCache_TTL(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	c, err := NewRedisCache(ctx, "redis://"+mr.Addr())
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	if err := c.Set(ctx, "key", []byte("v"), time.Minute); err != nil {
		t.Fatal(err)
	}
	mr.FastForward(2 * time.Minute)
	if _, hit, _ := c.Get(ctx, "key"); hit {
		t.Error("entry should expire in redis")
	}
}

func TestNewRedisCache_BadURL(t *testing.T) {
	if _, err := NewRedisCache(context.Background(), "not-a-url"); err == nil {
		t.Error("expected error for invalid url")
	}
}

func TestScoped(t *testing.T) {
	ctx := context.Background()
	root, _ := NewFileCache(t.TempDir())
	a := Scoped(root, "a:")
	b := Scoped(root, "b:")

	if err := a.Set(ctx, "key", []byte("from a"), 0); err != nil {
		t.Fatal(err)
	}
	if _, hit, _ := b.Get(ctx, "key"); hit {
		t.Error("scopes should not share keys")
	}
	data, hit, _ := root.Get(ctx, "a:key")
	if !hit || string(data) != "from a" {
		t.Errorf("root Get(a:key) = %q, %v", data, hit)
	}

	nested := Scoped(a, "x:")
	if err := nested.Set(ctx, "k", []byte("n"), 0); err != nil {
		t.Fatal(err)
	}
	if _, hit, _ := root.Get(ctx, "a:x:k"); !hit {
		t.Error("nested scope should store under a:x:k")
	}

	if _, hit, _ := Scoped(nil, "p:").Get(ctx, "k"); hit {
		t.Error("nil inner should behave as null cache")
	}
}

var errNetwork = errors.New("network error")

func TestRetryableError(t *testing.T) {
	if Retryable(nil) != nil {
		t.Error("Retryable(nil) should return nil")
	}
	err := Retryable(errNetwork)
	if !IsRetryable(err) {
		t.Error("IsRetryable should return true for wrapped error")
	}
	if !errors.Is(err, errNetwork) {
		t.Error("wrapped error should unwrap to the cause")
	}
	if err.Error() != errNetwork.Error() {
		t.Errorf("Error message should be preserved: %s", err.Error())
	}
	if IsRetryable(errNetwork) {
		t.Error("IsRetryable should return false for unwrapped error")
	}
}

func TestRetry(t *testing.T) {
	ctx := context.Background()

	calls := 0
	err := Retry(ctx, 3, time.Millisecond, func() error {
		calls++
		if calls < 3 {
			return Retryable(errNetwork)
		}
		return nil
	})
	if err != nil || calls != 3 {
		t.Errorf("Retry() err=%v calls=%d; want nil, 3", err, calls)
	}

	calls = 0
	err = Retry(ctx, 3, time.Millisecond, func() error {
		calls++
		return errNetwork
	})
	if err != errNetwork || calls != 1 {
		t.Errorf("non-retryable: err=%v calls=%d", err, calls)
	}

	calls = 0
	err = Retry(ctx, 2, time.Millisecond, func() error {
		calls++
		return Retryable(errNetwork)
	})
	if !errors.Is(err, errNetwork) || calls != 2 {
		t.Errorf("exhausted: err=%v calls=%d", err, calls)
	}
}

func TestRetryContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := RetryWithBackoff(ctx, func() error {
		return Retryable(errNetwork)
	})
	if err != context.Canceled {
		t.Errorf("Should return context error: %v", err)
	}
}
