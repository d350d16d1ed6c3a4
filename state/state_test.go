package state

import "testing"

func TestMicRoundTrip(t *testing.T) {
	f := New(t.TempDir())

	if f.Mic() {
		t.Fatal("mic flag should default to false")
	}
	if err := f.SetMic(true); err != nil {
		t.Fatalf("SetMic: %v", err)
	}
	if !f.Mic() {
		t.Fatal("mic flag not persisted as true")
	}
	if err := f.SetMic(false); err != nil {
		t.Fatalf("SetMic: %v", err)
	}
	if f.Mic() {
		t.Fatal("mic flag not persisted as false")
	}
}

func TestStatusRoundTrip(t *testing.T) {
	f := New(t.TempDir())

	if got := f.Status(); got != "" {
		t.Fatalf("empty status expected, got %q", got)
	}
	if err := f.SetStatus("Awaiting Orders."); err != nil {
		t.Fatalf("SetStatus: %v", err)
	}
	if got := f.Status(); got != "Awaiting Orders." {
		t.Fatalf("Status = %q", got)
	}
}

func TestCreatesDir(t *testing.T) {
	f := New(t.TempDir() + "/nested/files")
	if err := f.SetMic(true); err != nil {
		t.Fatalf("SetMic into missing dir: %v", err)
	}
	if !f.Mic() {
		t.Fatal("mic flag lost")
	}
}
