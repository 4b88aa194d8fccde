package simulation

import "github.com/google/uuid"

// EventKind doubles as the priority among events sharing a timestamp:
// expirations run first, then new triggers, then note scoring, then the end
// of the song.
type EventKind int

// Event kinds in priority order.
const (
	LockEnd EventKind = iota + 1
	SyncEnd
	SkillRateUpEnd
	AppealBoostEnd
	PerfectScoreUpEnd
	ComboBonusUpEnd
	SparkEnd
	NoteSpawn
	TimeSkill
	NoteStart
	NoteCompletion

	SongEnd EventKind = 99
)

// eventKinds lists every kind for per-kind accounting.
var eventKinds = []EventKind{
	LockEnd, SyncEnd, SkillRateUpEnd, AppealBoostEnd, PerfectScoreUpEnd,
	ComboBonusUpEnd, SparkEnd, NoteSpawn, TimeSkill, NoteStart,
	NoteCompletion, SongEnd,
}

func (k EventKind) String() string {
	switch k {
	case LockEnd:
		return "lock_end"
	case SyncEnd:
		return "sync_end"
	case SkillRateUpEnd:
		return "skill_rate_up_end"
	case AppealBoostEnd:
		return "appeal_boost_end"
	case PerfectScoreUpEnd:
		return "perfect_score_up_end"
	case ComboBonusUpEnd:
		return "combo_bonus_up_end"
	case SparkEnd:
		return "spark_end"
	case NoteSpawn:
		return "note_spawn"
	case TimeSkill:
		return "time_skill"
	case NoteStart:
		return "note_start"
	case NoteCompletion:
		return "note_completion"
	case SongEnd:
		return "song_end"
	default:
		return "unknown"
	}
}

// Event is one queued occurrence. Ordering is (Time, Kind, insertion order).
type Event struct {
	Time    float64
	Kind    EventKind
	Payload Payload

	seq uint64
}

// Payload is the closed set of event payloads.
type Payload interface {
	isPayload()
}

// SpawnPhase tells which end of a note came into view.
type SpawnPhase uint8

// Spawn phases.
const (
	SpawnHead SpawnPhase = iota
	SpawnTail
)

func (p SpawnPhase) String() string {
	if p == SpawnTail {
		return "end"
	}
	return "start"
}

// NotePayload identifies a note by chart index.
type NotePayload struct {
	Note  int
	Phase SpawnPhase
}

// SlotPayload identifies a team slot.
type SlotPayload struct {
	Slot int
}

// EffectPayload identifies one running effect instance.
type EffectPayload struct {
	ID   uuid.UUID
	Slot int
}

// LockPayload ends a Perfect Lock, or re-checks Total Trick when Trick is set.
type LockPayload struct {
	Trick bool
}

// EndPayload marks the end of the song.
type EndPayload struct{}

func (NotePayload) isPayload()   {}
func (SlotPayload) isPayload()   {}
func (EffectPayload) isPayload() {}
func (LockPayload) isPayload()   {}
func (EndPayload) isPayload()    {}
