package viewcache

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"

	"github.com/mohammed-shakir/geodata-explorer/internal/cache/keys"
	"github.com/mohammed-shakir/geodata-explorer/internal/cache/redisstore"
)

func newRedis(t *testing.T) (*redisstore.Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rc, err := redisstore.New(context.Background(), mr.Addr())
	if err != nil {
		t.Fatalf("redisstore.New: %v", err)
	}
	t.Cleanup(func() { _ = rc.Close() })
	return rc, mr
}

func TestLocalOnly(t *testing.T) {
	s := New(Config{Size: 2}, nil)
	ctx := context.Background()
	if _, ok := s.Get(ctx, "a"); ok {
		t.Fatal("unexpected hit on empty cache")
	}
	s.Set(ctx, "a", []byte("1"))
	if b, ok := s.Get(ctx, "a"); !ok || string(b) != "1" {
		t.Fatalf("got %q ok=%v", b, ok)
	}
}

func TestSharedTierPromotesIntoLocal(t *testing.T) {
	rc, mr := newRedis(t)
	ctx := context.Background()
	k := keys.View("map", "survey", "fp")

	writer := New(Config{TTL: time.Minute}, rc)
	writer.Set(ctx, k, []byte("payload"))
	if !mr.Exists(k) {
		t.Fatal("payload not written to redis")
	}

	reader := New(Config{TTL: time.Minute}, rc)
	b, ok := reader.Get(ctx, k)
	if !ok || string(b) != "payload" {
		t.Fatalf("shared read: %q ok=%v", b, ok)
	}
	if reader.Len() != 1 {
		t.Fatalf("local len=%d want 1 after promotion", reader.Len())
	}
}

func TestInvalidateTable(t *testing.T) {
	rc, mr := newRedis(t)
	ctx := context.Background()
	s := New(Config{TTL: time.Minute}, rc)

	s.Set(ctx, keys.View("map", "survey", "fp"), []byte("m"))
	s.Set(ctx, keys.View("gallery", "survey", "fp"), []byte("g"))
	other := keys.View("map", "alerts", "fp")
	s.Set(ctx, other, []byte("o"))

	n, err := s.InvalidateTable(ctx, "survey")
	if err != nil {
		t.Fatalf("InvalidateTable: %v", err)
	}
	if n != 4 {
		t.Fatalf("removed=%d want 4 (2 local + 2 redis)", n)
	}
	if _, ok := s.Get(ctx, keys.View("map", "survey", "fp")); ok {
		t.Fatal("survey map view survived invalidation")
	}
	if _, ok := s.Get(ctx, other); !ok {
		t.Fatal("other table must stay cached")
	}
	if len(mr.Keys()) != 1 {
		t.Fatalf("redis keys=%v", mr.Keys())
	}
}

func TestBackendErrorIsMiss(t *testing.T) {
	rc, mr := newRedis(t)
	s := New(Config{OpTimeout: 50 * time.Millisecond}, rc)
	mr.Close()
	if _, ok := s.Get(context.Background(), "k"); ok {
		t.Fatal("expected miss when redis is down")
	}
}

func TestInvalidateTable_EvictsDependents(t *testing.T) {
	rc, mr := newRedis(t)
	ctx := context.Background()
	s := New(Config{TTL: time.Minute, Dependents: map[string][]string{"mapeo": {"survey"}}}, rc)

	survey := keys.View("map", "survey", "fp")
	other := keys.View("map", "other", "fp")
	s.Set(ctx, survey, []byte("s"))
	s.Set(ctx, other, []byte("o"))

	if _, err := s.InvalidateTable(ctx, "mapeo"); err != nil {
		t.Fatalf("InvalidateTable: %v", err)
	}
	if mr.Exists(survey) {
		t.Fatal("dependent view still in redis")
	}
	if _, ok := s.local.Get(survey); ok {
		t.Fatal("dependent view still cached locally")
	}
	if !mr.Exists(other) {
		t.Fatal("unrelated table evicted")
	}
}

func TestSetIfCurrent_RejectsWriteAfterInvalidation(t *testing.T) {
	ctx := context.Background()
	s := New(Config{Dependents: map[string][]string{"mapeo": {"survey"}}}, nil)
	k := keys.View("map", "survey", "fp")

	gen := s.Generation("survey")
	if _, err := s.InvalidateTable(ctx, "mapeo"); err != nil {
		t.Fatalf("InvalidateTable: %v", err)
	}
	if s.SetIfCurrent(ctx, "survey", gen, k, []byte("old")) {
		t.Fatal("write from before the invalidation was accepted")
	}
	if _, ok := s.Get(ctx, k); ok {
		t.Fatal("stale payload cached")
	}

	gen = s.Generation("survey")
	if !s.SetIfCurrent(ctx, "survey", gen, k, []byte("new")) {
		t.Fatal("current write rejected")
	}
	if b, ok := s.Get(ctx, k); !ok || string(b) != "new" {
		t.Fatalf("got %q ok=%v", b, ok)
	}
}
