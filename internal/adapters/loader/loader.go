// Package loader decodes team and song documents into model types.
//
// A slot's stats are the card's own; an accessory lists its stats
// separately and they are added when the play is built. An Appeal Boost
// with no target boosts its own slot.
package loader

import (
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/LumineonRL/LLSIFTeamBuilder/internal/domain/model"
)

// ErrDecode wraps every failure to read or validate a document.
var ErrDecode = errors.New("decode document")

// slotDocument is a slot plus the 1-based position it occupies.
type slotDocument struct {
	Position   int `yaml:"position"`
	model.Slot `yaml:",inline"`
}

type teamDocument struct {
	Slots []slotDocument `yaml:"slots"`
}

// LoadTeam reads a team document from path.
func LoadTeam(path string) (*model.Team, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	defer f.Close()
	return DecodeTeam(f)
}

// DecodeTeam reads a team document. Positions not listed stay empty.
func DecodeTeam(r io.Reader) (*model.Team, error) {
	var doc teamDocument
	if err := decode(r, &doc); err != nil {
		return nil, err
	}

	team := &model.Team{}
	seen := make(map[int]bool, len(doc.Slots))
	for _, s := range doc.Slots {
		if s.Position < 1 || s.Position > model.SlotCount {
			return nil, fmt.Errorf("%w: slot position %d outside 1..%d", ErrDecode, s.Position, model.SlotCount)
		}
		if seen[s.Position] {
			return nil, fmt.Errorf("%w: slot position %d listed twice", ErrDecode, s.Position)
		}
		seen[s.Position] = true
		if s.Performer != nil {
			if err := checkAttribute(s.Performer.Attribute); err != nil {
				return nil, fmt.Errorf("%w: slot %d: %w", ErrDecode, s.Position, err)
			}
			if s.Performer.SkillLevel < 1 {
				s.Performer.SkillLevel = 1
			}
		}
		if s.Accessory != nil && s.Accessory.SkillLevel < 1 {
			s.Accessory.SkillLevel = 1
		}
		team.Slots[s.Position-1] = s.Slot
	}
	return team, nil
}

// LoadSong reads a song document from path.
func LoadSong(path string) (*model.Song, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	defer f.Close()
	return DecodeSong(f)
}

// DecodeSong reads a song document. Notes are returned in start-time order.
func DecodeSong(r io.Reader) (*model.Song, error) {
	var song model.Song
	if err := decode(r, &song); err != nil {
		return nil, err
	}
	if err := checkAttribute(song.Attribute); err != nil {
		return nil, fmt.Errorf("%w: song %q: %w", ErrDecode, song.Title, err)
	}
	if song.Length < 0 {
		return nil, fmt.Errorf("%w: song %q has negative length", ErrDecode, song.Title)
	}
	for i, n := range song.Notes {
		if n.EndTime < n.StartTime {
			return nil, fmt.Errorf("%w: note %d ends before it starts", ErrDecode, i+1)
		}
		if n.Position < 1 || n.Position > model.SlotCount {
			return nil, fmt.Errorf("%w: note %d position %d outside 1..%d", ErrDecode, i+1, n.Position, model.SlotCount)
		}
	}
	slices.SortStableFunc(song.Notes, func(a, b model.Note) int {
		switch {
		case a.StartTime < b.StartTime:
			return -1
		case a.StartTime > b.StartTime:
			return 1
		default:
			return 0
		}
	})
	if end := song.LastNoteEnd(); song.Length < end {
		song.Length = end
	}
	return &song, nil
}

func decode(r io.Reader, out any) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: empty document", ErrDecode)
		}
		return fmt.Errorf("%w: %w", ErrDecode, err)
	}
	return nil
}

func checkAttribute(a model.Attribute) error {
	if slices.Contains(model.Attributes, a) {
		return nil
	}
	return fmt.Errorf("unknown attribute %q", a)
}
