package s3m

import (
	"math"
	"testing"

	"github.com/quasilyte/s3m/s3mfile"
)

const (
	defaultSpeed = 6
	defaultTempo = 125
)

// makePattern creates a full-size pattern;
// the rows that are not mentioned are empty.
func makePattern(rows map[int][]s3mfile.Event) s3mfile.Pattern {
	pat := s3mfile.Pattern{Rows: make([]s3mfile.PatternRow, s3mfile.RowsPerPattern)}
	for i, events := range rows {
		pat.Rows[i].Events = events
	}
	return pat
}

func makeModule(order []uint8, patterns ...s3mfile.Pattern) *s3mfile.Module {
	return &s3mfile.Module{
		InitialSpeed: defaultSpeed,
		InitialTempo: defaultTempo,
		NumOrders:    len(order),
		NumPatterns:  len(patterns),
		PatternOrder: order,
		Patterns:     patterns,
	}
}

func effect(command, info uint8) s3mfile.Event {
	return s3mfile.Event{Command: command, Info: info}
}

func rows(speed, tempo, n int) float64 {
	return float64(n) * rowDuration(speed, tempo)
}

func checkDuration(t *testing.T, have, want float64) {
	t.Helper()
	if math.Abs(have-want) > 1e-9 {
		t.Errorf("duration: expected %f, got %f", want, have)
	}
}

func TestSimulateEmptyPatterns(t *testing.T) {
	m := makeModule([]uint8{0, 1, 0}, makePattern(nil), makePattern(nil))
	pb := Simulate(m, SimulationConfig{})

	checkDuration(t, pb.Duration, rows(defaultSpeed, defaultTempo, 3*64))
	if pb.RowsPlayed != 3*64 {
		t.Errorf("rows played: expected %d, got %d", 3*64, pb.RowsPlayed)
	}
	if pb.LoopDuration != 0 || pb.Truncated {
		t.Errorf("unexpected loop/truncation: %+v", pb)
	}
	wantTimes := []float64{0, rows(defaultSpeed, defaultTempo, 64), rows(defaultSpeed, defaultTempo, 128)}
	for i, want := range wantTimes {
		checkDuration(t, pb.OrderTimes[i], want)
	}
}

func TestSimulateSingleRow(t *testing.T) {
	pat := s3mfile.Pattern{Rows: make([]s3mfile.PatternRow, 1)}
	m := makeModule([]uint8{0}, pat)
	pb := Simulate(m, SimulationConfig{})

	want := 60 * (float64(defaultSpeed) / (24 * float64(defaultTempo)))
	if pb.Duration != want {
		t.Errorf("expected exactly %v, got %v", want, pb.Duration)
	}
}

func TestSimulateDefaults(t *testing.T) {
	tests := []struct {
		moduleSpeed int
		moduleTempo int
		config      SimulationConfig
		speed       int
		tempo       int
	}{
		{0, 0, SimulationConfig{}, 6, 125},
		{3, 150, SimulationConfig{}, 3, 150},
		{3, 150, SimulationConfig{Speed: 4, Tempo: 100}, 4, 100},
		{0, 150, SimulationConfig{}, 6, 150},
	}
	for _, test := range tests {
		m := makeModule([]uint8{0}, makePattern(nil))
		m.InitialSpeed = test.moduleSpeed
		m.InitialTempo = test.moduleTempo
		pb := Simulate(m, test.config)
		checkDuration(t, pb.Duration, rows(test.speed, test.tempo, 64))
	}
}

func TestSimulateSpeedAndTempo(t *testing.T) {
	m := makeModule([]uint8{0},
		makePattern(map[int][]s3mfile.Event{
			0:  {effect(0x01, 3)},
			10: {effect(0x01, 0)}, // Ignored
			20: {effect(0x14, 0x40)},
			30: {effect(0x14, 0x20)}, // A slide of +16
		}),
	)
	pb := Simulate(m, SimulationConfig{})

	want := rows(3, defaultTempo, 20) +
		rows(3, 0x40, 10) +
		rows(3, 0x40+16, 34)
	checkDuration(t, pb.Duration, want)
}

func TestSimulateEndOfSongMarker(t *testing.T) {
	changer := makePattern(map[int][]s3mfile.Event{
		0: {effect(0x01, 3), effect(0x14, 0x40)},
	})
	plain := makePattern(nil)

	m := makeModule([]uint8{0, 255, 1, 255, 254, 1}, changer, plain)
	pb := Simulate(m, SimulationConfig{})

	want := rows(3, 0x40, 64) + rows(defaultSpeed, defaultTempo, 128)
	checkDuration(t, pb.Duration, want)

	// The markers are never played.
	for _, i := range []int{1, 3, 4} {
		if pb.OrderTimes[i] != -1 {
			t.Errorf("order[%d]: expected to be skipped, got time %f", i, pb.OrderTimes[i])
		}
	}

	// Without the marker, the speed and tempo are preserved.
	m = makeModule([]uint8{0, 254, 1}, changer, plain)
	pb = Simulate(m, SimulationConfig{})
	checkDuration(t, pb.Duration, rows(3, 0x40, 128))
}

func TestSimulateTrailingInvalidOrders(t *testing.T) {
	m := makeModule([]uint8{0, 254, 7, 255}, makePattern(nil))
	pb := Simulate(m, SimulationConfig{})
	checkDuration(t, pb.Duration, rows(defaultSpeed, defaultTempo, 64))

	m = makeModule([]uint8{255, 0}, makePattern(nil))
	pb = Simulate(m, SimulationConfig{})
	checkDuration(t, pb.Duration, rows(defaultSpeed, defaultTempo, 64))

	m = makeModule(nil, makePattern(nil))
	pb = Simulate(m, SimulationConfig{})
	if pb.Duration != 0 || pb.RowsPlayed != 0 {
		t.Errorf("empty order table: unexpected result %+v", pb)
	}
}

func TestSimulateBackwardJump(t *testing.T) {
	m := makeModule([]uint8{0, 1},
		makePattern(map[int][]s3mfile.Event{
			5: {effect(0x02, 0)}, // The same order
		}),
		makePattern(map[int][]s3mfile.Event{
			63: {effect(0x02, 0)}, // Song restart
		}),
	)
	pb := Simulate(m, SimulationConfig{})

	checkDuration(t, pb.Duration, rows(defaultSpeed, defaultTempo, 128))
	if pb.RowsPlayed != 128 {
		t.Errorf("rows played: expected 128, got %d", pb.RowsPlayed)
	}
}

func TestSimulateForwardJump(t *testing.T) {
	pat := makePattern(map[int][]s3mfile.Event{
		10: {effect(0x02, 2)},
	})
	m := makeModule([]uint8{0, 1, 1}, pat, makePattern(nil))
	pb := Simulate(m, SimulationConfig{})

	checkDuration(t, pb.Duration, rows(defaultSpeed, defaultTempo, 11+64))
	if pb.OrderTimes[1] != -1 {
		t.Errorf("order[1]: expected to be skipped, got %f", pb.OrderTimes[1])
	}
	checkDuration(t, pb.OrderTimes[2], rows(defaultSpeed, defaultTempo, 11))

	// A target that is out of the order table is clamped.
	pat = makePattern(map[int][]s3mfile.Event{
		0: {effect(0x02, 0xF0)},
	})
	m = makeModule([]uint8{0, 1, 1}, pat, makePattern(nil))
	pb = Simulate(m, SimulationConfig{})
	checkDuration(t, pb.Duration, rows(defaultSpeed, defaultTempo, 1+64))
}

func TestSimulatePatternBreak(t *testing.T) {
	tests := []struct {
		name string
		info uint8
		want int
	}{
		{"row0", 0x00, 1 + 64},
		{"row32", 0x20, 1 + 32},
		{"row63", 0x3F, 1 + 1},
		{"clamped", 0x50, 1 + 1},
		{"clampedMax", 0xFF, 1 + 1},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			m := makeModule([]uint8{0, 1},
				makePattern(map[int][]s3mfile.Event{
					0: {effect(0x03, test.info)},
				}),
				makePattern(nil),
			)
			pb := Simulate(m, SimulationConfig{})
			if pb.RowsPlayed != test.want {
				t.Errorf("rows played: expected %d, got %d", test.want, pb.RowsPlayed)
			}
			checkDuration(t, pb.Duration, rows(defaultSpeed, defaultTempo, test.want))
		})
	}
}

func TestSimulatePatternBreakAtLastOrder(t *testing.T) {
	m := makeModule([]uint8{0},
		makePattern(map[int][]s3mfile.Event{
			3: {effect(0x03, 0)},
		}),
	)
	pb := Simulate(m, SimulationConfig{})
	if pb.RowsPlayed != 4 {
		t.Errorf("rows played: expected 4, got %d", pb.RowsPlayed)
	}
}

func TestSimulateStopsAtFirstJump(t *testing.T) {
	m := makeModule([]uint8{0, 1},
		makePattern(map[int][]s3mfile.Event{
			0: {effect(0x03, 0), effect(0x01, 3), effect(0x02, 1)},
		}),
		makePattern(nil),
	)
	pb := Simulate(m, SimulationConfig{})

	// The speed change after the break is not applied.
	checkDuration(t, pb.Duration, rows(defaultSpeed, defaultTempo, 65))
}

func TestSimulateTempoRestore(t *testing.T) {
	m := makeModule([]uint8{0},
		makePattern(map[int][]s3mfile.Event{
			0: {effect(0x14, 0x05)}, // 125 -> 120
			1: {effect(0x14, 0x12)}, // 120 -> 122
			2: {effect(0x14, 0x00)}, // back to 120
			3: {effect(0x14, 0x00)}, // still 120, no deeper history
		}),
	)
	pb := Simulate(m, SimulationConfig{})

	want := rows(defaultSpeed, 120, 1) +
		rows(defaultSpeed, 122, 1) +
		rows(defaultSpeed, 120, 62)
	checkDuration(t, pb.Duration, want)
}

func TestSimulateTempoRestoreWithoutSlide(t *testing.T) {
	m := makeModule([]uint8{0},
		makePattern(map[int][]s3mfile.Event{
			0: {effect(0x14, 0x80)},
			1: {effect(0x14, 0x00)}, // Restores the initial tempo
		}),
	)
	pb := Simulate(m, SimulationConfig{})

	want := rows(defaultSpeed, 0x80, 1) + rows(defaultSpeed, defaultTempo, 63)
	checkDuration(t, pb.Duration, want)
}

func TestSimulatePatternLoop(t *testing.T) {
	m := makeModule([]uint8{0},
		makePattern(map[int][]s3mfile.Event{
			10: {effect(0x13, 0xB0)},
			12: {effect(0x13, 0xB3)},
		}),
	)
	pb := Simulate(m, SimulationConfig{})

	row := rowDuration(defaultSpeed, defaultTempo)
	checkDuration(t, pb.LoopDuration, 3*2*row)
	checkDuration(t, pb.Duration, 64*row+3*2*row)
	if pb.RowsPlayed != 64 {
		t.Errorf("rows played: expected 64, got %d", pb.RowsPlayed)
	}
}

func TestSimulatePatternLoopRestart(t *testing.T) {
	m := makeModule([]uint8{0},
		makePattern(map[int][]s3mfile.Event{
			0:  {effect(0x13, 0xB0)},
			5:  {effect(0x13, 0xB0)}, // Restarts the accumulation
			7:  {effect(0x13, 0xB1)},
			20: {effect(0x13, 0xB2)}, // Not inside a loop: adds the old sum
			30: {effect(0x13, 0xC2), effect(0x13, 0x82)},
		}),
	)
	pb := Simulate(m, SimulationConfig{})

	row := rowDuration(defaultSpeed, defaultTempo)
	checkDuration(t, pb.LoopDuration, 1*2*row+2*2*row)
	checkDuration(t, pb.Duration, 64*row+pb.LoopDuration)
}

func TestSimulateUnknownEffects(t *testing.T) {
	m := makeModule([]uint8{0},
		makePattern(map[int][]s3mfile.Event{
			0: {effect(0x04, 0x12), effect(0x13, 0x60), effect(0x1A, 0xFF), effect(0x00, 0x00)},
		}),
	)
	pb := Simulate(m, SimulationConfig{})
	checkDuration(t, pb.Duration, rows(defaultSpeed, defaultTempo, 64))
}

func TestSimulateMaxRows(t *testing.T) {
	m := makeModule([]uint8{0, 0, 0}, makePattern(nil))
	pb := Simulate(m, SimulationConfig{MaxRows: 100})

	if !pb.Truncated {
		t.Error("expected a truncated result")
	}
	if pb.RowsPlayed != 100 {
		t.Errorf("rows played: expected 100, got %d", pb.RowsPlayed)
	}
	checkDuration(t, pb.Duration, rows(defaultSpeed, defaultTempo, 100))
}

func TestSimulateShortPatterns(t *testing.T) {
	short := s3mfile.Pattern{Rows: make([]s3mfile.PatternRow, 10)}
	m := makeModule([]uint8{0, 1, 0},
		short,
		s3mfile.Pattern{},
	)
	pb := Simulate(m, SimulationConfig{})
	checkDuration(t, pb.Duration, rows(defaultSpeed, defaultTempo, 20))
}
