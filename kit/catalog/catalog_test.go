package catalog

import (
	"errors"
	"testing"
)

type memorySource struct {
	name string
	data string
	err  error
}

func (m memorySource) Load() ([]byte, error) {
	if m.err != nil {
		return nil, m.err
	}
	return []byte(m.data), nil
}

func (m memorySource) Path() string {
	return m.name
}

func TestReloadAcceptsObjectKeyedEntries(t *testing.T) {
	resolver, err := newResolver(memorySource{name: "mem", data: `{
		"duelist": {"kit": "blade"},
		"archer": {"kit": "bow"}
	}`})
	if err != nil {
		t.Fatalf("newResolver: %v", err)
	}

	ids := resolver.IDs()
	if len(ids) != 2 || ids[0] != "archer" || ids[1] != "duelist" {
		t.Fatalf("ids = %v, want sorted [archer duelist]", ids)
	}
	entry, ok := resolver.Resolve("duelist")
	if !ok || entry.Kit != KitBlade {
		t.Fatalf("resolve duelist = %+v ok=%v", entry, ok)
	}
}

func TestReloadAcceptsArrayEntries(t *testing.T) {
	resolver, err := newResolver(memorySource{name: "mem", data: `[
		{"id": "duelist", "kit": "blade"},
		{"id": "hexer", "kit": "venom"}
	]`})
	if err != nil {
		t.Fatalf("newResolver: %v", err)
	}
	if _, ok := resolver.Resolve("hexer"); !ok {
		t.Fatalf("array entry missing after reload")
	}
}

func TestReloadRejectsKeyMismatch(t *testing.T) {
	_, err := newResolver(memorySource{name: "mem", data: `{
		"duelist": {"id": "other", "kit": "blade"}
	}`})
	if err == nil {
		t.Fatalf("expected id/key mismatch error")
	}
}

func TestReloadRejectsDuplicateIDs(t *testing.T) {
	_, err := newResolver(memorySource{name: "mem", data: `[
		{"id": "duelist", "kit": "blade"},
		{"id": "duelist", "kit": "bow"}
	]`})
	if err == nil {
		t.Fatalf("expected duplicate id error")
	}
}

func TestReloadRejectsUnknownKit(t *testing.T) {
	_, err := newResolver(memorySource{name: "mem", data: `[{"id": "x", "kit": "pyro"}]`})
	if !errors.Is(err, ErrUnknownKit) {
		t.Fatalf("err = %v, want ErrUnknownKit", err)
	}
}

func TestReloadRejectsMismatchedTuningSection(t *testing.T) {
	_, err := newResolver(memorySource{name: "mem", data: `[
		{"id": "x", "kit": "blade", "frost": {"BoltDamage": 9}}
	]`})
	if err == nil {
		t.Fatalf("expected mismatched section error")
	}
}

func TestLaterSourcesOverrideEarlier(t *testing.T) {
	resolver, err := newResolver(
		memorySource{name: "base", data: `{"duelist": {"kit": "blade"}}`},
		memorySource{name: "overlay", data: `{"duelist": {"kit": "blade", "blade": {"BasicStamina": 7}}}`},
	)
	if err != nil {
		t.Fatalf("newResolver: %v", err)
	}
	entry, _ := resolver.Resolve("duelist")
	if entry.Blade == nil || entry.Blade.BasicStamina != 7 {
		t.Fatalf("overlay did not win: %+v", entry)
	}
}

func TestBuildAppliesTuningAndDefaults(t *testing.T) {
	resolver, err := newResolver(memorySource{name: "mem", data: `{
		"duelist": {"kit": "blade", "blade": {"BasicStamina": 7}}
	}`})
	if err != nil {
		t.Fatalf("newResolver: %v", err)
	}
	strategy, err := resolver.Build("duelist")
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	basic := strategy.Basic()
	if basic.StaminaCost != 7 {
		t.Fatalf("tuned stamina = %f, want 7", basic.StaminaCost)
	}
	if basic.Duration != 0.45 {
		t.Fatalf("untouched field = %f, want the 0.45 default", basic.Duration)
	}
}

func TestBuildUnknownLoadout(t *testing.T) {
	resolver, err := newResolver(memorySource{name: "mem", data: `{}`})
	if err != nil {
		t.Fatalf("newResolver: %v", err)
	}
	if _, err := resolver.Build("nobody"); !errors.Is(err, ErrUnknownKit) {
		t.Fatalf("err = %v, want ErrUnknownKit", err)
	}
}

func TestLoadSkipsMissingFiles(t *testing.T) {
	resolver, err := Load("does/not/exist.json")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := resolver.IDs(); len(got) != 0 {
		t.Fatalf("ids = %v, want empty", got)
	}
}

func TestBuildEveryKitName(t *testing.T) {
	resolver, err := newResolver(memorySource{name: "mem", data: `{
		"a": {"kit": "blade"},
		"b": {"kit": "frost"},
		"c": {"kit": "venom"},
		"d": {"kit": "bow"}
	}`})
	if err != nil {
		t.Fatalf("newResolver: %v", err)
	}
	want := map[string]string{"a": "blade", "b": "frost", "c": "venom", "d": "bow"}
	for id, name := range want {
		strategy, err := resolver.Build(id)
		if err != nil {
			t.Fatalf("Build(%s): %v", id, err)
		}
		if strategy.Name() != name {
			t.Fatalf("Build(%s).Name() = %s, want %s", id, strategy.Name(), name)
		}
	}
}
