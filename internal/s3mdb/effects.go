package s3mdb

import (
	"github.com/quasilyte/s3m/s3mfile"
)

type Effect struct {
	Op  EffectOp
	Arg uint8
}

type EffectOp int

const (
	// EffectNone is used for every effect that doesn't
	// affect the song timing.
	EffectNone EffectOp = iota

	// Encoding: effect=0x01 (Axx)
	// Arg: ticks per row, 0 is ignored
	EffectSetSpeed

	// Encoding: effect=0x02 (Bxx)
	// Arg: order index
	EffectOrderJump

	// Encoding: effect=0x03 (Cxx)
	// Arg: row index inside the next pattern
	EffectPatternBreak

	// Encoding: effect=0x13 (SB0)
	// Arg: 0
	EffectPatternLoopStart

	// Encoding: effect=0x13 (SBx, x>0)
	// Arg: the number of repetitions
	EffectPatternLoopEnd

	// Encoding: effect=0x14 (Txx, xx>0x20)
	// Arg: tempo
	EffectSetTempo

	// Encoding: effect=0x14 (T0x and T1x)
	// Arg: slide delta (negative for T0x), never 0
	EffectTempoSlide

	// Encoding: effect=0x14 (T00)
	// Arg: 0
	EffectRestoreTempo
)

const (
	commandSetSpeed     = 0x01
	commandOrderJump    = 0x02
	commandPatternBreak = 0x03
	commandSpecial      = 0x13
	commandSetTempo     = 0x14

	specialPatternLoop = 0xB
)

// TempoSlideDelta returns a signed tempo change for EffectTempoSlide.
func (e Effect) TempoSlideDelta() int {
	if e.Arg < 0x10 {
		return -int(e.Arg)
	}
	return int(e.Arg - 0x10)
}

// ConvertEffect decodes the event effect.
//
// Only the effects that influence the playback position or
// its speed are recognized, everything else becomes EffectNone.
func ConvertEffect(ev s3mfile.Event) Effect {
	e := Effect{Arg: ev.Info}

	switch ev.Command {
	case commandSetSpeed:
		if ev.Info > 0 {
			e.Op = EffectSetSpeed
		}

	case commandOrderJump:
		e.Op = EffectOrderJump

	case commandPatternBreak:
		e.Op = EffectPatternBreak

	case commandSpecial:
		if ev.Info>>4 != specialPatternLoop {
			break
		}
		e.Arg = ev.Info & 0x0F
		if e.Arg == 0 {
			e.Op = EffectPatternLoopStart
		} else {
			e.Op = EffectPatternLoopEnd
		}

	case commandSetTempo:
		switch {
		case ev.Info > 0x20:
			e.Op = EffectSetTempo
		case ev.Info == 0:
			e.Op = EffectRestoreTempo
		default:
			e.Op = EffectTempoSlide
		}
	}

	return e
}
