package types

import (
	vins "github.com/StevenCui/open-vins"
)

// Landmark is a 3 dimensional feature position variable tracked by the
// measurement front end. It behaves like a Vec but keeps its own identity:
// matching a landmark never matches the backing vector.
type Landmark struct {
	Vec
	// FeatureID is the front end identifier of the tracked feature
	FeatureID uint32
}

// NewLandmark creates new Landmark for the given feature identifier
func NewLandmark(featureID uint32) *Landmark {
	return &Landmark{
		Vec:       *NewVec(3),
		FeatureID: featureID,
	}
}

// Clone returns an independent copy of the landmark
func (l *Landmark) Clone() vins.Variable {
	c := NewLandmark(l.FeatureID)
	c.Vec = *l.Vec.Clone().(*Vec)

	return c
}

// Match returns l if other is this very landmark and nil otherwise
func (l *Landmark) Match(other vins.Variable) vins.Variable {
	if l == other {
		return l
	}

	return nil
}
