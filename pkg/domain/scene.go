package domain

import "slices"

// Scene is the latest-value join of everything a renderer needs for one frame.
type Scene struct {
	Frame   uint64   `json:"frame"`
	Stars   []Star   `json:"stars"`
	Hero    Entity   `json:"hero"`
	Enemies []Entity `json:"enemies"`
	Shots   []Entity `json:"shots"`
	Score   int      `json:"score"`
}

// Clone returns a copy of s that shares no slices with it.
func (s Scene) Clone() Scene {
	s.Stars = slices.Clone(s.Stars)
	s.Enemies = slices.Clone(s.Enemies)
	s.Shots = slices.Clone(s.Shots)
	return s
}
