package repository

import (
	"context"
	"testing"

	"github.com/wormhole-url/wormhole/wormhole"
)

func newTestBadgerStore(t *testing.T) *BadgerStore {
	t.Helper()
	store, err := OpenBadgerStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestBadgerStore_GetMissOnAbsentKey(t *testing.T) {
	t.Parallel()
	store := newTestBadgerStore(t)
	got, err := store.Get(context.Background(), testCode(t, "absent-key"))
	if err != nil || got != nil {
		t.Fatalf("want (nil, nil), got (%v, %v)", got, err)
	}
}

func TestBadgerStore_InsertThenGet(t *testing.T) {
	t.Parallel()
	store := newTestBadgerStore(t)
	ctx := context.Background()
	k := testCode(t, "abc123")
	record := wormhole.UrlRecord{OriginalURL: "https://example.com"}

	if err := store.Insert(ctx, k, record); err != nil {
		t.Fatal(err)
	}
	got, err := store.Get(ctx, k)
	if err != nil || got == nil || got.OriginalURL != record.OriginalURL {
		t.Fatalf("want %+v, got (%+v, %v)", record, got, err)
	}
}

func TestBadgerStore_InsertConflict(t *testing.T) {
	t.Parallel()
	store := newTestBadgerStore(t)
	ctx := context.Background()
	k := testCode(t, "abc123")
	record := wormhole.UrlRecord{OriginalURL: "https://example.com"}

	if err := store.Insert(ctx, k, record); err != nil {
		t.Fatal(err)
	}
	err := store.Insert(ctx, k, record)
	if err == nil {
		t.Fatal("expected a conflict error on duplicate insert")
	}
	var cacheErr *Error
	if !asError(err, &cacheErr) || cacheErr.Kind != KindConflict {
		t.Fatalf("want KindConflict, got %v", err)
	}
}

func TestBadgerStore_ExistsAndDelete(t *testing.T) {
	t.Parallel()
	store := newTestBadgerStore(t)
	ctx := context.Background()
	k := testCode(t, "abc123")
	record := wormhole.UrlRecord{OriginalURL: "https://example.com"}

	if exists, err := store.Exists(ctx, k); err != nil || exists {
		t.Fatalf("want not exists, got (%v, %v)", exists, err)
	}
	if err := store.Insert(ctx, k, record); err != nil {
		t.Fatal(err)
	}
	if exists, err := store.Exists(ctx, k); err != nil || !exists {
		t.Fatalf("want exists, got (%v, %v)", exists, err)
	}

	existed, err := store.Delete(ctx, k)
	if err != nil || !existed {
		t.Fatalf("want existed=true, got (%v, %v)", existed, err)
	}
	if exists, _ := store.Exists(ctx, k); exists {
		t.Fatal("expected key to be gone after Delete")
	}

	existed, err = store.Delete(ctx, k)
	if err != nil || existed {
		t.Fatalf("second Delete should report existed=false, got (%v, %v)", existed, err)
	}
}

func asError(err error, target **Error) bool {
	e, ok := err.(*Error)
	if !ok {
		return false
	}
	*target = e
	return true
}
