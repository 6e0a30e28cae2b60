package views

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/urlsync-dev/urlsync/pkg/codec"
)

func TestNewViewSnapshotsValues(t *testing.T) {
	v := New("cheap shoes", codec.Values{"q": "shoes", "page": 3, "maxPrice": 50})

	if v.ID == "" || len(v.ID) != 16 {
		t.Errorf("ID = %q, want 16 hex chars", v.ID)
	}
	if v.Name != "cheap shoes" {
		t.Errorf("Name = %q", v.Name)
	}
	if v.Query != "maxPrice=50&page=3&q=shoes" {
		t.Errorf("Query = %q", v.Query)
	}

	got, err := v.Values()
	if err != nil {
		t.Fatalf("Values: %v", err)
	}
	want := codec.Values{"q": "shoes", "page": 3, "maxPrice": 50}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Values = %v, want %v", got, want)
	}
}

func TestViewIDsUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		v := New("x", nil)
		if seen[v.ID] {
			t.Fatalf("duplicate ID %q", v.ID)
		}
		seen[v.ID] = true
	}
}

func TestMemoryStoreCRUD(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	v := New("my view", codec.Values{"page": 2})
	if err := s.Save(ctx, v); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := s.Load(ctx, v.ID)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Name != "my view" || got.Query != v.Query {
		t.Errorf("Load = %+v", got)
	}

	list, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 1 {
		t.Errorf("List len = %d, want 1", len(list))
	}

	if err := s.Delete(ctx, v.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Load(ctx, v.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Load after Delete = %v, want ErrNotFound", err)
	}

	// Deleting again is a no-op.
	if err := s.Delete(ctx, v.ID); err != nil {
		t.Errorf("second Delete = %v", err)
	}
}

func TestMemoryStoreOverwrite(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	v := New("before", nil)
	if err := s.Save(ctx, v); err != nil {
		t.Fatalf("Save: %v", err)
	}
	v.Name = "after"
	if err := s.Save(ctx, v); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := s.Load(ctx, v.ID)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Name != "after" {
		t.Errorf("Name = %q, want after", got.Name)
	}
}

func TestMemoryStoreTTL(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(WithTTL(time.Minute))

	current := time.Unix(1_700_000_000, 0)
	s.now = func() time.Time { return current }

	v := New("fleeting", nil)
	if err := s.Save(ctx, v); err != nil {
		t.Fatalf("Save: %v", err)
	}

	if _, err := s.Load(ctx, v.ID); err != nil {
		t.Fatalf("Load before expiry: %v", err)
	}

	current = current.Add(2 * time.Minute)
	if _, err := s.Load(ctx, v.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Load after expiry = %v, want ErrNotFound", err)
	}

	list, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 0 {
		t.Errorf("List after expiry = %d items, want 0", len(list))
	}
}
