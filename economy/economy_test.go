package economy

import "testing"

func TestAddChargeClampsToCap(t *testing.T) {
	e := New(Config{})
	e.RegisterCharge(ChargeSpec{Name: "venom", Cap: 6})

	if got := e.AddCharge("venom", 1000); got != 6 {
		t.Fatalf("expected saturation at 6, got %d", got)
	}
	if got := e.AddCharge("venom", 1); got != 6 {
		t.Fatalf("expected counter to stay at cap, got %d", got)
	}
	if got := e.AddCharge("venom", -100); got != 0 {
		t.Fatalf("expected clamp at zero, got %d", got)
	}
}

func TestConsumeAllReturnsValueAndResets(t *testing.T) {
	e := New(Config{})
	e.RegisterCharge(ChargeSpec{Name: "blood", Cap: 8})
	e.AddCharge("blood", 5)

	if got := e.ConsumeAll("blood"); got != 5 {
		t.Fatalf("ConsumeAll = %d, want 5", got)
	}
	if got := e.Count("blood"); got != 0 {
		t.Fatalf("expected 0 after ConsumeAll, got %d", got)
	}
	if got := e.ConsumeAll("blood"); got != 0 {
		t.Fatalf("second ConsumeAll = %d, want 0", got)
	}
}

func TestConsumeExactRejectsShortBalance(t *testing.T) {
	e := New(Config{})
	e.RegisterCharge(ChargeSpec{Name: "trust", Cap: 8})
	e.AddCharge("trust", 2)

	if e.Consume("trust", 3) {
		t.Fatalf("expected consume of 3 with 2 available to fail")
	}
	if got := e.Count("trust"); got != 2 {
		t.Fatalf("failed consume must not touch the counter, got %d", got)
	}
	if !e.Consume("trust", 2) {
		t.Fatalf("expected consume of 2 to succeed")
	}
	if got := e.Count("trust"); got != 0 {
		t.Fatalf("expected 0 after consume, got %d", got)
	}
}

func TestCapCallbackFiresOnceAndResets(t *testing.T) {
	e := New(Config{})
	fired := 0
	e.RegisterCharge(ChargeSpec{Name: "frost", Cap: 8, OnCap: func(name string, cap int) {
		fired++
		if name != "frost" || cap != 8 {
			t.Fatalf("unexpected callback args %s/%d", name, cap)
		}
	}})

	for i := 0; i < 7; i++ {
		e.AddCharge("frost", 1)
	}
	if fired != 0 {
		t.Fatalf("callback fired before cap")
	}
	if got := e.AddCharge("frost", 1); got != 0 {
		t.Fatalf("expected reset to 0 at cap, got %d", got)
	}
	if fired != 1 {
		t.Fatalf("callback fired %d times, want 1", fired)
	}
	if got := e.Count("frost"); got != 0 {
		t.Fatalf("counter after cap trigger = %d, want 0", got)
	}
}

func TestIdleDecayIsThrottled(t *testing.T) {
	e := New(Config{DecayCheckInterval: 1})
	e.RegisterCharge(ChargeSpec{Name: "frost", Cap: 8, DecayAfter: 3})
	e.AddCharge("frost", 4)

	// Many small ticks below the check interval must not decay anything.
	for i := 0; i < 9; i++ {
		e.Advance(0.1)
	}
	if got := e.Count("frost"); got != 4 {
		t.Fatalf("decayed too early, got %d", got)
	}

	// Cross the idle threshold.
	for i := 0; i < 30; i++ {
		e.Advance(0.1)
	}
	if got := e.Count("frost"); got != 0 {
		t.Fatalf("expected idle decay to zero, got %d", got)
	}
}

func TestGainResetsIdleDecay(t *testing.T) {
	e := New(Config{DecayCheckInterval: 1})
	e.RegisterCharge(ChargeSpec{Name: "frost", Cap: 8, DecayAfter: 2})
	e.AddCharge("frost", 3)

	for i := 0; i < 3; i++ {
		e.Advance(0.5)
		e.AddCharge("frost", 1)
	}
	if got := e.Count("frost"); got != 6 {
		t.Fatalf("expected gains to keep the counter alive, got %d", got)
	}
}

func TestUltimateGainsAndCast(t *testing.T) {
	e := New(Config{UltimateGainBasic: 2, UltimateGainCharged: 6})
	for i := 0; i < 3; i++ {
		e.AddUltimate(HitBasic)
	}
	e.AddUltimate(HitCharged)
	if got := e.Ultimate(); got != 12 {
		t.Fatalf("Ultimate = %f, want 12", got)
	}
	if e.UseUltimate() {
		t.Fatalf("ultimate must not cast below cap")
	}
	for i := 0; i < 100; i++ {
		e.AddUltimate(HitCharged)
	}
	if got := e.Ultimate(); got != 100 {
		t.Fatalf("ultimate must cap at 100, got %f", got)
	}
	if !e.UseUltimate() {
		t.Fatalf("expected ultimate cast at cap")
	}
	if got := e.Ultimate(); got != 0 {
		t.Fatalf("ultimate after cast = %f, want 0", got)
	}
}

func TestUltimateDebugOverride(t *testing.T) {
	e := New(Config{})
	e.SetUltimateOverride(true)
	if !e.UseUltimate() {
		t.Fatalf("override must allow casting with zero charge")
	}
}

func TestComboClamping(t *testing.T) {
	e := New(Config{MaxCombo: 3})
	e.SetCombo(5)
	if got := e.Combo(); got != 3 {
		t.Fatalf("combo = %d, want 3", got)
	}
	e.SetCombo(-1)
	if got := e.Combo(); got != 0 {
		t.Fatalf("combo = %d, want 0", got)
	}
}

func TestUnregisteredChargeIsNoop(t *testing.T) {
	e := New(Config{})
	if got := e.AddCharge("ghost", 3); got != 0 {
		t.Fatalf("unregistered AddCharge = %d, want 0", got)
	}
	if got := e.ConsumeAll("ghost"); got != 0 {
		t.Fatalf("unregistered ConsumeAll = %d, want 0", got)
	}
}
