package s3m

import (
	"github.com/quasilyte/s3m/internal/s3mdb"
	"github.com/quasilyte/s3m/s3mfile"
)

// SimulationConfig configures the playback simulation.
type SimulationConfig struct {
	// Speed is an initial number of ticks per row.
	//
	// A zero value will use the S3M module initial speed.
	// If that value is zero as well, a value of 6 will be used.
	Speed uint

	// Tempo is an initial tempo (in BPM).
	//
	// A zero value will use the S3M module initial tempo.
	// If that value is zero as well, a value of 125 will be used.
	Tempo uint

	// MaxRows limits the number of rows the simulation can process.
	// When the limit is reached, the result is marked as truncated.
	//
	// A zero value means 1<<20 rows, which is enough for any
	// sane module (a song of 256 orders has 16384 rows).
	MaxRows int
}

// Playback is a result of the playback simulation.
type Playback struct {
	// Duration is a total song duration, in seconds.
	// It includes the LoopDuration.
	Duration float64

	// LoopDuration is a part of the Duration that was
	// produced by the pattern loop repetitions.
	LoopDuration float64

	// RowsPlayed is a number of rows the simulation went through.
	// Looped rows are not played again, so they're counted once.
	RowsPlayed int

	// Truncated is set if the simulation was stopped by the
	// SimulationConfig.MaxRows limit.
	Truncated bool

	// OrderTimes maps an order index to the moment (in seconds)
	// it was entered for the first time.
	// Orders that were never played have a value of -1.
	OrderTimes []float64
}

// Simulate walks the module patterns the way a player would,
// computing the song duration.
//
// Only the effects that change the song timing or the playback
// position are interpreted: set speed, set tempo, order jump,
// pattern break and pattern loop. Order jumps are only
// followed forward.
func Simulate(m *s3mfile.Module, config SimulationConfig) Playback {
	applySimulationDefaults(m, &config)

	s := &simulator{
		module:       m,
		maxRows:      config.MaxRows,
		initialSpeed: int(config.Speed),
		initialTempo: int(config.Tempo),
	}
	s.rewind()
	s.run()

	return s.result
}

func applySimulationDefaults(m *s3mfile.Module, config *SimulationConfig) {
	if config.Speed == 0 {
		config.Speed = uint(m.InitialSpeed)
		if config.Speed == 0 {
			config.Speed = 6
		}
	}
	if config.Tempo == 0 {
		config.Tempo = uint(m.InitialTempo)
		if config.Tempo == 0 {
			config.Tempo = 125
		}
	}
	if config.MaxRows <= 0 {
		config.MaxRows = 1 << 20
	}
}

type rowControlKind uint8

const (
	rowContinue rowControlKind = iota

	// The playback continues from the specified order and row.
	rowJumpToOrder
	rowBreakAtRow

	// The playback is over.
	rowEndOfSong
)

// rowControl tells the order-level loop what to do next.
type rowControl struct {
	kind  rowControlKind
	order int
	row   int
}

type simulator struct {
	module *s3mfile.Module

	maxRows int

	initialSpeed int
	initialTempo int

	orderIndex int
	row        int

	speed      int // Ticks per row
	tempo      int
	prevTempo  int // Undo slot for the tempo slides
	insideLoop bool

	loopDuration float64

	result Playback
}

func (s *simulator) rewind() {
	s.orderIndex = 0
	s.row = 0
	s.speed = s.initialSpeed
	s.tempo = s.initialTempo
	s.prevTempo = s.tempo
	s.insideLoop = false
	s.loopDuration = 0

	s.result = Playback{
		OrderTimes: make([]float64, len(s.module.PatternOrder)),
	}
	for i := range s.result.OrderTimes {
		s.result.OrderTimes[i] = -1
	}
}

func (s *simulator) run() {
	for s.orderIndex < len(s.module.PatternOrder) {
		pat := s.selectPattern()
		if pat == nil {
			return
		}

		if s.result.OrderTimes[s.orderIndex] < 0 {
			s.result.OrderTimes[s.orderIndex] = s.result.Duration
		}

		ctl := s.playPattern(pat)
		switch ctl.kind {
		case rowEndOfSong:
			return
		case rowJumpToOrder, rowBreakAtRow:
			s.orderIndex = ctl.order
			s.row = ctl.row
		default:
			s.orderIndex++
			s.row = 0
		}
	}
}

// selectPattern resolves the current order entry to a pattern.
// Entries without a decoded pattern (including 254 and 255 markers)
// are skipped; the end of song marker also resets the speed and tempo.
//
// A nil result means that the song is over.
func (s *simulator) selectPattern() *s3mfile.Pattern {
	order := s.module.PatternOrder
	numPatterns := len(s.module.Patterns)

	patternIndex := int(order[s.orderIndex])
	for patternIndex >= numPatterns && s.orderIndex < len(order)-1 {
		if patternIndex == s3mfile.OrderEndOfSong {
			s.speed = s.initialSpeed
			s.tempo = s.initialTempo
		}
		s.orderIndex++
		patternIndex = int(order[s.orderIndex])
	}
	if patternIndex >= numPatterns {
		return nil
	}

	return &s.module.Patterns[patternIndex]
}

func (s *simulator) playPattern(pat *s3mfile.Pattern) rowControl {
	for s.row < len(pat.Rows) {
		if s.result.RowsPlayed >= s.maxRows {
			s.result.Truncated = true
			return rowControl{kind: rowEndOfSong}
		}
		ctl := s.playRow(&pat.Rows[s.row])
		if ctl.kind != rowContinue {
			return ctl
		}
		s.row++
	}
	return rowControl{kind: rowContinue}
}

func (s *simulator) playRow(row *s3mfile.PatternRow) rowControl {
	ctl := rowControl{kind: rowContinue}
	for _, ev := range row.Events {
		ctl = s.applyEffect(s3mdb.ConvertEffect(ev))
		if ctl.kind != rowContinue {
			// The rest of the row effects are ignored,
			// but the row itself is still played.
			break
		}
	}

	d := rowDuration(s.speed, s.tempo)
	s.result.Duration += d
	s.result.RowsPlayed++
	if s.insideLoop {
		s.loopDuration += d
	}

	return ctl
}

func (s *simulator) applyEffect(e s3mdb.Effect) rowControl {
	switch e.Op {
	case s3mdb.EffectSetSpeed:
		s.speed = int(e.Arg)

	case s3mdb.EffectSetTempo:
		s.tempo = int(e.Arg)

	case s3mdb.EffectRestoreTempo:
		s.tempo = s.prevTempo

	case s3mdb.EffectTempoSlide:
		// Only one step of history is kept.
		s.prevTempo = s.tempo
		s.tempo += e.TempoSlideDelta()

	case s3mdb.EffectOrderJump:
		target := int(e.Arg)
		if target <= s.orderIndex {
			// Backward jumps would loop the song forever.
			break
		}
		return rowControl{
			kind:  rowJumpToOrder,
			order: clampMax(target, len(s.module.PatternOrder)-1),
			row:   0,
		}

	case s3mdb.EffectPatternBreak:
		return rowControl{
			kind:  rowBreakAtRow,
			order: s.orderIndex + 1,
			row:   clampMax(int(e.Arg), s3mfile.RowsPerPattern-1),
		}

	case s3mdb.EffectPatternLoopStart:
		s.insideLoop = true
		s.loopDuration = 0

	case s3mdb.EffectPatternLoopEnd:
		extra := s.loopDuration * float64(e.Arg)
		s.result.Duration += extra
		s.result.LoopDuration += extra
		s.insideLoop = false
	}

	return rowControl{kind: rowContinue}
}
