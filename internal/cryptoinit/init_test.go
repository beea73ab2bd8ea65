package cryptoinit

import "testing"

func TestWireWithNilConfigUsesDefault(t *testing.T) {
	d := Wire(nil)
	if d == nil {
		t.Fatal("Wire(nil) returned nil dispatcher")
	}
	if d.Config() == nil {
		t.Fatal("expected a non-nil default config")
	}
}
