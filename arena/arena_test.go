package arena

import (
	"testing"

	"emberveil/combat/geom"
)

type stubTarget struct {
	id     TargetID
	pos    geom.Vec
	facing geom.Vec
	alive  bool
	health float64
	radius float64
	boss   bool
}

func (s *stubTarget) ID() TargetID        { return s.id }
func (s *stubTarget) Position() geom.Vec  { return s.pos }
func (s *stubTarget) Facing() geom.Vec    { return s.facing }
func (s *stubTarget) Alive() bool         { return s.alive }
func (s *stubTarget) Health() float64     { return s.health }
func (s *stubTarget) TakeDamage(a float64) {
	s.health -= a
	if s.health <= 0 {
		s.alive = false
	}
}
func (s *stubTarget) HitRadius() float64 { return s.radius }
func (s *stubTarget) Boss() bool         { return s.boss }

func newStub(id TargetID, x, y float64) *stubTarget {
	return &stubTarget{id: id, pos: geom.Vec{X: x, Y: y}, facing: geom.Vec{X: 1}, alive: true, health: 100, radius: 0.5}
}

func TestRegistryAddRemove(t *testing.T) {
	reg := NewRegistry()
	a := newStub("a", 0, 0)
	b := newStub("b", 5, 0)
	reg.AddTarget(a)
	reg.AddTarget(b)
	if reg.Len() != 2 {
		t.Fatalf("expected 2 targets, got %d", reg.Len())
	}
	if !reg.RemoveTarget("a") {
		t.Fatalf("expected removal of a to succeed")
	}
	if reg.RemoveTarget("a") {
		t.Fatalf("expected second removal of a to fail")
	}
	if got := reg.Lookup("b"); got != b {
		t.Fatalf("expected lookup to return b")
	}
	if got := reg.Lookup("a"); got != nil {
		t.Fatalf("expected lookup of removed target to return nil")
	}
}

func TestSnapshotIsStableAcrossRemoval(t *testing.T) {
	reg := NewRegistry()
	a := newStub("a", 0, 0)
	b := newStub("b", 1, 0)
	c := newStub("c", 2, 0)
	reg.AddTarget(a)
	reg.AddTarget(b)
	reg.AddTarget(c)

	snap := reg.Snapshot(nil)
	reg.RemoveTarget("b")
	if len(snap) != 3 {
		t.Fatalf("snapshot length changed after removal: %d", len(snap))
	}
	if reg.Len() != 2 {
		t.Fatalf("registry length after removal = %d, want 2", reg.Len())
	}
}

func TestNearestSkipsDead(t *testing.T) {
	reg := NewRegistry()
	near := newStub("near", 1, 0)
	near.alive = false
	far := newStub("far", 3, 0)
	reg.AddTarget(near)
	reg.AddTarget(far)

	got := reg.Nearest(geom.Vec{}, 10)
	if got == nil || got.ID() != "far" {
		t.Fatalf("expected far target, got %v", got)
	}
}

func TestNearestInConeRespectsFacing(t *testing.T) {
	reg := NewRegistry()
	front := newStub("front", 2, 0)
	behind := newStub("behind", -2, 0)
	reg.AddTarget(behind)
	reg.AddTarget(front)

	got := reg.NearestInCone(geom.Vec{}, geom.Vec{X: 1}, 5, 0.5)
	if got == nil || got.ID() != "front" {
		t.Fatalf("expected front target, got %v", got)
	}
	if got := reg.NearestInCone(geom.Vec{}, geom.Vec{X: 1}, 1, 0.5); got != nil {
		t.Fatalf("expected nothing within reach 1, got %v", got.ID())
	}
}
