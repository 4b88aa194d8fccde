// Package model holds the read-only inputs of a simulation: team slots,
// performers, accessories, passive skills and the note chart of a song.
package model

// Attribute is one of the three stat colours a song or performer belongs to.
type Attribute string

// Known attributes.
const (
	Smile Attribute = "Smile"
	Pure  Attribute = "Pure"
	Cool  Attribute = "Cool"
)

// Attributes lists every attribute in display order.
var Attributes = []Attribute{Smile, Pure, Cool}

// Stats is a smile/pure/cool stat triple.
type Stats struct {
	Smile int `yaml:"smile" koanf:"smile"`
	Pure  int `yaml:"pure" koanf:"pure"`
	Cool  int `yaml:"cool" koanf:"cool"`
}

// Get returns the stat for attr. Unknown attributes read as 0.
func (s Stats) Get(attr Attribute) int {
	switch attr {
	case Smile:
		return s.Smile
	case Pure:
		return s.Pure
	case Cool:
		return s.Cool
	default:
		return 0
	}
}

// With returns a copy of s with attr set to v.
func (s Stats) With(attr Attribute, v int) Stats {
	switch attr {
	case Smile:
		s.Smile = v
	case Pure:
		s.Pure = v
	case Cool:
		s.Cool = v
	}
	return s
}

// Add returns the component-wise sum of s and o.
func (s Stats) Add(o Stats) Stats {
	return Stats{Smile: s.Smile + o.Smile, Pure: s.Pure + o.Pure, Cool: s.Cool + o.Cool}
}

// Map applies fn to every component.
func (s Stats) Map(fn func(int) int) Stats {
	return Stats{Smile: fn(s.Smile), Pure: fn(s.Pure), Cool: fn(s.Cool)}
}
