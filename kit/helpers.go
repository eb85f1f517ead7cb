package kit

import (
	"math"

	"emberveil/combat/arena"
	"emberveil/combat/damage"
	"emberveil/combat/economy"
	"emberveil/combat/geom"
)

// scratch reuses one snapshot slice per runtime across casts.
func (rt *Runtime) snapshot() []arena.Target {
	rt.scratchTargets = rt.scratchTargets[:0]
	if rt.Registry != nil {
		rt.scratchTargets = rt.Registry.Snapshot(rt.scratchTargets)
	}
	return rt.scratchTargets
}

// MeleeTarget returns the nearest alive target in the actor's forward cone.
func (rt *Runtime) MeleeTarget(reach, minDot float64) arena.Target {
	if rt == nil || rt.Registry == nil || rt.Actor == nil {
		return nil
	}
	return rt.Registry.NearestInCone(rt.Actor.Position(), rt.Actor.Facing(), reach, minDot)
}

// SweepCone strikes every alive target inside the actor's forward cone and
// reports the hit count. onHit runs per landed hit.
func (rt *Runtime) SweepCone(reach, minDot, baseDamage float64, tag string, source economy.HitKind, onHit func(arena.Target, damage.Result)) int {
	if rt == nil || rt.Actor == nil {
		return 0
	}
	origin := rt.Actor.Position()
	forward := rt.Actor.Facing()
	hits := 0
	for _, target := range rt.snapshot() {
		if target == nil || !target.Alive() {
			continue
		}
		if !geom.InCone(origin, forward, target.Position(), reach+target.HitRadius(), minDot) {
			continue
		}
		result := rt.LandHit(source, target, baseDamage, tag)
		if result.Amount <= 0 {
			continue
		}
		hits++
		if onHit != nil {
			onHit(target, result)
		}
	}
	return hits
}

// StrikeArea strikes every alive target within radius of center and reports
// the hit count. Ground-target abilities resolve through here.
func (rt *Runtime) StrikeArea(center geom.Vec, radius, baseDamage float64, tag string, source economy.HitKind, onHit func(arena.Target, damage.Result)) int {
	if rt == nil {
		return 0
	}
	hits := 0
	for _, target := range rt.snapshot() {
		if target == nil || !target.Alive() {
			continue
		}
		if !geom.WithinRadius(center, target.Position(), radius+target.HitRadius()) {
			continue
		}
		result := rt.LandHit(source, target, baseDamage, tag)
		if result.Amount <= 0 {
			continue
		}
		hits++
		if onHit != nil {
			onHit(target, result)
		}
	}
	return hits
}

// AimDirection converts a ground-target point into a unit direction from the
// actor, falling back to the actor's facing when the point sits on top of it.
func (rt *Runtime) AimDirection(aim geom.Vec) geom.Vec {
	if rt == nil || rt.Actor == nil {
		return geom.Vec{X: 1}
	}
	if dir, ok := aim.Sub(rt.Actor.Position()).Normalized(); ok {
		return dir
	}
	if dir, ok := rt.Actor.Facing().Normalized(); ok {
		return dir
	}
	return geom.Vec{X: 1}
}

// rotate turns v by rad radians; projectile fans spread through here.
func rotate(v geom.Vec, rad float64) geom.Vec {
	sin, cos := math.Sin(rad), math.Cos(rad)
	return geom.Vec{X: v.X*cos - v.Y*sin, Y: v.X*sin + v.Y*cos}
}
