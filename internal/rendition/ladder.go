// Package rendition decides which derivative renditions an asset should have.
package rendition

import "media-job-service/internal/entity"

// Spec is one rung of the ladder: the frame size for a tier and the lower
// tiers a source of that tier cascades into, in generation order.
type Spec struct {
	Width   int
	Height  int
	Cascade []entity.Tier
}

// Ladder maps a source tier to its Spec. It is configuration, not state.
type Ladder map[entity.Tier]Spec

// DefaultLadder is 4k -> 1080p -> 720p.
func DefaultLadder() Ladder {
	return Ladder{
		entity.Tier4K:    {Width: 3840, Height: 2160, Cascade: []entity.Tier{entity.Tier1080p, entity.Tier720p}},
		entity.Tier1080p: {Width: 1920, Height: 1080, Cascade: []entity.Tier{entity.Tier720p}},
		entity.Tier720p:  {Width: 1280, Height: 720},
	}
}

func (l Ladder) Spec(tier entity.Tier) (Spec, bool) {
	s, ok := l[tier]
	return s, ok
}

// Cascade returns a copy of the tiers generated from tier.
func (l Ladder) Cascade(tier entity.Tier) []entity.Tier {
	s, ok := l[tier]
	if !ok || len(s.Cascade) == 0 {
		return nil
	}
	return append([]entity.Tier(nil), s.Cascade...)
}

// MissingTargets returns the cascade of sourceTier minus the tiers already
// present, in ladder order. An unknown tier or an empty cascade yields an
// empty result.
func (l Ladder) MissingTargets(sourceTier entity.Tier, existing map[entity.Tier]bool) []entity.Tier {
	return Narrow(l.Cascade(sourceTier), existing)
}

// Narrow drops every tier in targets that is already in existing, keeping
// order and dropping duplicates.
func Narrow(targets []entity.Tier, existing map[entity.Tier]bool) []entity.Tier {
	out := make([]entity.Tier, 0, len(targets))
	seen := make(map[entity.Tier]bool, len(targets))
	for _, t := range targets {
		if existing[t] || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

// TierSet builds the existing-set argument from stored renditions.
func TierSet(renditions []entity.Rendition) map[entity.Tier]bool {
	set := make(map[entity.Tier]bool, len(renditions))
	for _, r := range renditions {
		set[r.Resolution] = true
	}
	return set
}
