package entity

import "strings"

// Tier is a named resolution bucket.
type Tier string

const (
	Tier4K    Tier = "4k"
	Tier1080p Tier = "1080p"
	Tier720p  Tier = "720p"
)

func (t Tier) Valid() bool {
	switch t {
	case Tier4K, Tier1080p, Tier720p:
		return true
	default:
		return false
	}
}

func ParseTier(s string) (Tier, bool) {
	t := Tier(strings.ToLower(strings.TrimSpace(s)))
	return t, t.Valid()
}
