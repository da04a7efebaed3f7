package registry

import "testing"

func TestSetGetGlobal(t *testing.T) {
	r := NewRegistry()
	r.SetGlobal("k", 42)
	v, ok := r.GetGlobal("k")
	if !ok {
		t.Fatal("key not found after SetGlobal")
	}
	if v.(int) != 42 {
		t.Errorf("value = %v, want 42", v)
	}
}

func TestLockBlocksWrites(t *testing.T) {
	r := NewRegistry()
	r.SetGlobal("k", "before")
	r.Lock("k")
	if !r.IsLocked("k") {
		t.Fatal("IsLocked = false after Lock")
	}
	r.SetGlobal("k", "after")
	v, _ := r.GetGlobal("k")
	if v.(string) != "before" {
		t.Errorf("locked key was overwritten: %v", v)
	}
}

func TestUnlockForTesting(t *testing.T) {
	r := NewRegistry()
	r.Lock("k")
	r.UnlockForTesting("k")
	if r.IsLocked("k") {
		t.Fatal("key still locked after UnlockForTesting")
	}
	r.SetGlobal("k", 1)
	if _, ok := r.GetGlobal("k"); !ok {
		t.Error("write after unlock did not stick")
	}
}
