package lrustore

import (
	"context"
	"fmt"
	"testing"
	"time"
)

func TestStore_SetGetDel(t *testing.T) {
	s := New(8, time.Minute)
	ctx := context.Background()

	body := []byte("<seiscomp/>")
	_ = s.Set(ctx, "k", body, 0)
	body[0] = 'X'

	got, ok, err := s.Get(ctx, "k")
	if err != nil || !ok || string(got) != "<seiscomp/>" {
		t.Fatalf("Get got=%q ok=%v err=%v", got, ok, err)
	}
	_ = s.Del(ctx, "k")
	if _, ok, _ := s.Get(ctx, "k"); ok {
		t.Fatalf("k should be deleted")
	}
}

func TestStore_PerEntryTTL(t *testing.T) {
	s := New(8, time.Hour)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }
	ctx := context.Background()

	_ = s.Set(ctx, "short", []byte("x"), time.Second)
	_ = s.Set(ctx, "forever", []byte("y"), 0)

	now = now.Add(2 * time.Second)
	if _, ok, _ := s.Get(ctx, "short"); ok {
		t.Fatalf("short entry should have expired")
	}
	if _, ok, _ := s.Get(ctx, "forever"); !ok {
		t.Fatalf("entry without ttl should survive")
	}
	if s.Len() != 1 {
		t.Fatalf("expired entry should be evicted on read, len=%d", s.Len())
	}
}

func TestStore_EvictsLeastRecentlyUsed(t *testing.T) {
	s := New(2, time.Minute)
	ctx := context.Background()
	_ = s.Set(ctx, "a", []byte("1"), 0)
	_ = s.Set(ctx, "b", []byte("2"), 0)
	_, _, _ = s.Get(ctx, "a")
	_ = s.Set(ctx, "c", []byte("3"), 0)

	if _, ok, _ := s.Get(ctx, "b"); ok {
		t.Fatalf("b should have been evicted")
	}
	if _, ok, _ := s.Get(ctx, "a"); !ok {
		t.Fatalf("a was recently used and should remain")
	}
}

func TestStore_DelPrefix(t *testing.T) {
	s := New(64, time.Minute)
	ctx := context.Background()
	for i := range 5 {
		_ = s.Set(ctx, fmt.Sprintf("fdsnws:station:IU:f=%d", i), []byte("x"), 0)
	}
	_ = s.Set(ctx, "fdsnws:station:BR:f=1", []byte("x"), 0)

	n, err := s.DelPrefix(ctx, "fdsnws:station:IU:")
	if err != nil || n != 5 {
		t.Fatalf("n=%d err=%v", n, err)
	}
	if s.Len() != 1 {
		t.Fatalf("len=%d want 1", s.Len())
	}
}
