package store

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemoryStoreGetSetDelete(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	defer s.Close()

	if _, err := s.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get missing: err = %v, want ErrNotFound", err)
	}

	if err := s.Set(ctx, "k", []byte("v1")); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, err := s.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != "v1" {
		t.Errorf("Get = %q, want v1", got)
	}

	if err := s.Set(ctx, "k", []byte("v2")); err != nil {
		t.Fatalf("Set overwrite: %v", err)
	}
	got, _ = s.Get(ctx, "k")
	if string(got) != "v2" {
		t.Errorf("Get after overwrite = %q, want v2", got)
	}

	if err := s.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Get(ctx, "k"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get after delete: err = %v, want ErrNotFound", err)
	}
	// Deleting a missing key is not an error.
	if err := s.Delete(ctx, "k"); err != nil {
		t.Errorf("Delete missing: %v", err)
	}
}

func TestMemoryStoreTTL(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	defer s.Close()

	if err := s.Set(ctx, "short", []byte("x"), 1); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if _, err := s.Get(ctx, "short"); err != nil {
		t.Fatalf("Get before expiry: %v", err)
	}

	// Force the entry past its deadline instead of sleeping.
	s.mu.Lock()
	past := time.Now().Add(-time.Second)
	s.data["short"].expireAt = &past
	s.mu.Unlock()

	if _, err := s.Get(ctx, "short"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get after expiry: err = %v, want ErrNotFound", err)
	}
}

func TestMemoryStoreBatch(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	defer s.Close()

	kvs := map[string][]byte{
		"a": []byte("1"),
		"b": []byte("2"),
	}
	if err := s.BatchSet(ctx, kvs); err != nil {
		t.Fatalf("BatchSet: %v", err)
	}

	got, err := s.BatchGet(ctx, []string{"a", "b", "missing"})
	if err != nil {
		t.Fatalf("BatchGet: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("BatchGet returned %d entries, want 2", len(got))
	}
	if string(got["a"]) != "1" || string(got["b"]) != "2" {
		t.Errorf("BatchGet = %v", got)
	}
	if _, ok := got["missing"]; ok {
		t.Error("BatchGet returned entry for missing key")
	}
}

func TestMemoryStoreZRange(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	defer s.Close()

	for member, score := range map[string]float64{
		"low": 1, "mid": 5, "high": 9,
		"tie-b": 3, "tie-a": 3,
	} {
		if err := s.ZAdd(ctx, "board", score, member); err != nil {
			t.Fatalf("ZAdd %s: %v", member, err)
		}
	}

	tests := []struct {
		name        string
		start, stop int64
		want        []string
	}{
		{"full range", 0, -1, []string{"high", "mid", "tie-a", "tie-b", "low"}},
		{"top two", 0, 1, []string{"high", "mid"}},
		{"middle slice", 1, 3, []string{"mid", "tie-a", "tie-b"}},
		{"start past end", 10, -1, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.ZRange(ctx, "board", tt.start, tt.stop)
			if err != nil {
				t.Fatalf("ZRange: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("ZRange = %v, want %v", got, tt.want)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Fatalf("ZRange = %v, want %v", got, tt.want)
				}
			}
		})
	}

	if got, err := s.ZRange(ctx, "empty", 0, -1); err != nil || len(got) != 0 {
		t.Errorf("ZRange empty key = %v, %v", got, err)
	}
}

func TestMemoryStoreZScore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	defer s.Close()

	if err := s.ZAdd(ctx, "board", 7.5, "m"); err != nil {
		t.Fatalf("ZAdd: %v", err)
	}
	score, err := s.ZScore(ctx, "board", "m")
	if err != nil {
		t.Fatalf("ZScore: %v", err)
	}
	if score != 7.5 {
		t.Errorf("ZScore = %v, want 7.5", score)
	}
	if _, err := s.ZScore(ctx, "board", "nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("ZScore missing member: err = %v, want ErrNotFound", err)
	}
	if _, err := s.ZScore(ctx, "nope", "m"); !errors.Is(err, ErrNotFound) {
		t.Errorf("ZScore missing key: err = %v, want ErrNotFound", err)
	}
}

func TestMemoryStoreCloseIdempotent(t *testing.T) {
	s := NewMemoryStore()
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
}
