package store

import "testing"

func TestMemoryKVRoundTrip(t *testing.T) {
	kv := NewMemoryKV()

	got, err := kv.Get("conversation_history")
	if err != nil {
		t.Fatalf("get on empty store: %v", err)
	}
	if got != "" {
		t.Fatalf("expected empty value, got %q", got)
	}

	if err := kv.Set("conversation_history", `[{"role":"user","content":"hi"}]`); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := kv.Set("conversation_history", "second"); err != nil {
		t.Fatalf("overwrite: %v", err)
	}

	got, err = kv.Get("conversation_history")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != "second" {
		t.Fatalf("expected overwritten value, got %q", got)
	}
}
