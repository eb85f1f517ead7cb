package guard

import "testing"

func TestFailfPanicsWhenEnabled(t *testing.T) {
	Enabled.Store(true)
	defer Enabled.Store(false)
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic with guard enabled")
		}
	}()
	Failf("zero-length direction")
}

func TestFailfNoopsWhenDisabled(t *testing.T) {
	Enabled.Store(false)
	if got := Failf("disposed instance reused"); got {
		t.Fatalf("Failf must return false")
	}
}

func TestCheck(t *testing.T) {
	Enabled.Store(false)
	if !Check(true, "never") {
		t.Fatalf("true condition must pass")
	}
	if Check(false, "violated") {
		t.Fatalf("false condition must fail")
	}
}
