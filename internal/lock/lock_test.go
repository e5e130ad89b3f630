package lock

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

// fakeRedis keeps keys in memory and evaluates the unlock script natively.
type fakeRedis struct {
	redis.Scripter

	mu      sync.Mutex
	keys    map[string]string
	ttls    map[string]time.Duration
	evalErr error
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{keys: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (f *fakeRedis) SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.keys[key]; ok {
		return redis.NewBoolResult(false, nil)
	}
	f.keys[key] = value.(string)
	f.ttls[key] = expiration
	return redis.NewBoolResult(true, nil)
}

func (f *fakeRedis) EvalSha(ctx context.Context, sha1 string, keys []string, args ...interface{}) *redis.Cmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.evalErr != nil {
		return redis.NewCmdResult(nil, f.evalErr)
	}
	if f.keys[keys[0]] == args[0].(string) {
		delete(f.keys, keys[0])
		return redis.NewCmdResult(int64(1), nil)
	}
	return redis.NewCmdResult(int64(0), nil)
}

func (f *fakeRedis) has(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.keys[key]
	return ok
}

func TestNoop_RunsFn(t *testing.T) {
	called := false
	err := Noop{}.WithDoctorLock(context.Background(), 1, func(ctx context.Context) error {
		called = true
		return nil
	})
	if err != nil || !called {
		t.Fatalf("err = %v called = %v", err, called)
	}
}

func TestRedisLocker_AcquiresAndReleases(t *testing.T) {
	rdb := newFakeRedis()
	l := &RedisLocker{client: rdb, ttl: 5 * time.Second}

	err := l.WithDoctorLock(context.Background(), 7, func(ctx context.Context) error {
		if !rdb.has("lock:doctor:7") {
			t.Fatalf("lock key not held inside fn")
		}
		if _, ok := ctx.Deadline(); !ok {
			t.Fatalf("fn context has no deadline")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("WithDoctorLock error: %v", err)
	}
	if rdb.has("lock:doctor:7") {
		t.Fatalf("lock key not released")
	}
	if rdb.ttls["lock:doctor:7"] != 5*time.Second {
		t.Fatalf("ttl = %v, want 5s", rdb.ttls["lock:doctor:7"])
	}
}

func TestRedisLocker_ContentionFailsFast(t *testing.T) {
	rdb := newFakeRedis()
	rdb.keys["lock:doctor:7"] = "someone-else"
	l := &RedisLocker{client: rdb, ttl: time.Second}

	err := l.WithDoctorLock(context.Background(), 7, func(ctx context.Context) error {
		t.Fatalf("fn must not run without the lock")
		return nil
	})
	if !errors.Is(err, ErrNotAcquired) {
		t.Fatalf("err = %v, want %v", err, ErrNotAcquired)
	}
	if rdb.keys["lock:doctor:7"] != "someone-else" {
		t.Fatalf("foreign lock was released")
	}
}

func TestRedisLocker_ReleasesOnError(t *testing.T) {
	rdb := newFakeRedis()
	l := &RedisLocker{client: rdb, ttl: time.Second}
	boom := errors.New("boom")

	err := l.WithDoctorLock(context.Background(), 3, func(ctx context.Context) error { return boom })
	if err != boom {
		t.Fatalf("err = %v, want %v", err, boom)
	}
	if rdb.has("lock:doctor:3") {
		t.Fatalf("lock key not released after error")
	}
}

func TestRedisLocker_LogsFailedRelease(t *testing.T) {
	rdb := newFakeRedis()
	rdb.evalErr = errors.New("connection reset")
	var buf bytes.Buffer
	l := &RedisLocker{client: rdb, ttl: time.Second, log: slog.New(slog.NewTextHandler(&buf, nil))}

	err := l.WithDoctorLock(context.Background(), 4, func(ctx context.Context) error { return nil })
	if err != nil {
		t.Fatalf("WithDoctorLock error: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "doctor lock not released") || !strings.Contains(out, "doctor_id=4") || !strings.Contains(out, "connection reset") {
		t.Fatalf("log output = %q, want release failure for doctor 4", out)
	}
}
