package store

import (
	"path/filepath"
	"testing"
)

func openTestKV(t *testing.T) *KV {
	t.Helper()
	kv, err := Open(filepath.Join(t.TempDir(), "state", "test.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { kv.Close() })
	return kv
}

func TestSetGet(t *testing.T) {
	kv := openTestKV(t)

	if err := kv.Set("auth:token", "tok123"); err != nil {
		t.Fatalf("set: %v", err)
	}
	value, ok, err := kv.Get("auth:token")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !ok || value != "tok123" {
		t.Errorf("expected (tok123, true), got (%q, %v)", value, ok)
	}
}

func TestGet_Missing(t *testing.T) {
	kv := openTestKV(t)

	value, ok, err := kv.Get("nope")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if ok || value != "" {
		t.Errorf("expected miss, got (%q, %v)", value, ok)
	}
}

func TestSet_Overwrites(t *testing.T) {
	kv := openTestKV(t)

	kv.Set("k", "one")
	kv.Set("k", "two")

	value, _, _ := kv.Get("k")
	if value != "two" {
		t.Errorf("expected overwrite to 'two', got %q", value)
	}
}

func TestDelete_AbsentIsNoop(t *testing.T) {
	kv := openTestKV(t)

	if err := kv.Delete("nope"); err != nil {
		t.Errorf("deleting an absent key should not error: %v", err)
	}
}

func TestSetMany_DeleteMany(t *testing.T) {
	kv := openTestKV(t)

	err := kv.SetMany(map[string]string{
		"auth:token": "tok",
		"auth:user":  `{"email":"a@b.com","isAdmin":false}`,
	})
	if err != nil {
		t.Fatalf("setmany: %v", err)
	}

	if _, ok, _ := kv.Get("auth:user"); !ok {
		t.Fatal("expected auth:user to be written")
	}

	if err := kv.DeleteMany("auth:token", "auth:user"); err != nil {
		t.Fatalf("deletemany: %v", err)
	}
	if _, ok, _ := kv.Get("auth:token"); ok {
		t.Error("expected auth:token to be gone")
	}
	if _, ok, _ := kv.Get("auth:user"); ok {
		t.Error("expected auth:user to be gone")
	}
}

func TestOpen_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	kv, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	kv.Set("k", "persisted")
	kv.Close()

	kv2, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer kv2.Close()

	value, ok, _ := kv2.Get("k")
	if !ok || value != "persisted" {
		t.Errorf("expected value to survive reopen, got (%q, %v)", value, ok)
	}
}
