package model

// Note is one chart entry. Position is the lane, 1 through 9.
type Note struct {
	StartTime float64 `yaml:"start_time"`
	EndTime   float64 `yaml:"end_time"`
	Position  int     `yaml:"position"`
	IsStar    bool    `yaml:"is_star"`
	IsSwing   bool    `yaml:"is_swing"`
}

// IsHold reports whether the note must be held from start to end.
func (n Note) IsHold() bool { return n.StartTime != n.EndTime }

// Kind describes the note for logs.
func (n Note) Kind() string {
	switch {
	case n.IsHold() && n.IsSwing:
		return "swing hold"
	case n.IsHold():
		return "hold"
	case n.IsSwing:
		return "swing"
	default:
		return "regular"
	}
}

// Song is an ordered note chart plus the metadata scoring depends on.
type Song struct {
	Title      string    `yaml:"title"`
	Difficulty string    `yaml:"difficulty"`
	Group      string    `yaml:"group"`
	Attribute  Attribute `yaml:"attribute"`
	Length     float64   `yaml:"length"`
	Notes      []Note    `yaml:"notes"`
}

// LastNoteEnd is the latest end time over all notes, or 0 for an empty chart.
func (s *Song) LastNoteEnd() float64 {
	var end float64
	for _, n := range s.Notes {
		if n.EndTime > end {
			end = n.EndTime
		}
	}
	return end
}
