package s3mfile

import (
	"fmt"
	"io"
)

const (
	// RowsPerPattern is a fixed S3M pattern height.
	RowsPerPattern = 64

	// NumChannelSlots is the channel table size.
	NumChannelSlots = 32

	// OrderEndOfSong marks the end of a song (or a sub-song)
	// inside the pattern order table.
	OrderEndOfSong = 255

	// OrderSkip is a conventional "skip this slot" marker.
	// It gets no special treatment: like any other index without
	// a decoded pattern, it's skipped during playback.
	OrderSkip = 254

	// All instrument and pattern pointers are counted in
	// 16-byte paragraphs.
	paragraphSize = 16

	signature = "SCRM"
)

// Module is a parsed S3M file contents.
//
// Only the parts needed to walk the song structure are kept:
// sample data, note values and volumes are not decoded.
type Module struct {
	// Name is a module title, without the padding.
	Name string

	NumOrders      int
	NumInstruments int
	NumPatterns    int

	Flags uint16

	// TrackerVersion is a raw "Cwt/v" header field.
	// The highest nibble identifies the tracker (see TrackerName),
	// the rest is a tracker-specific version number.
	TrackerVersion uint16

	// TrackerName is derived from the TrackerVersion.
	// It's empty for unknown trackers.
	TrackerName string

	// These values come straight from the header;
	// they can be 0 in some broken files.
	InitialSpeed int
	InitialTempo int

	ChannelTable [NumChannelSlots]uint8

	// PatternOrder can refer to patterns that don't exist.
	PatternOrder []uint8

	InstrumentPointers []uint16
	PatternPointers    []uint16

	Instruments []Instrument

	Patterns []Pattern
}

// NumChannels reports the number of assigned channel slots.
func (m *Module) NumChannels() int {
	n := 0
	for _, v := range m.ChannelTable {
		if v != 255 {
			n++
		}
	}
	return n
}

// NumActiveChannels reports the number of enabled channels.
func (m *Module) NumActiveChannels() int {
	n := 0
	for _, v := range m.ChannelTable {
		if v < 30 {
			n++
		}
	}
	return n
}

type Pattern struct {
	// Rows always has RowsPerPattern elements.
	Rows []PatternRow
}

type PatternRow struct {
	// Events are stored in the pattern data order.
	Events []Event
}

// Event is a single channel cell of the pattern row.
// Only the effect part of the cell is preserved.
//
// A cell without an effect has both Command and Info set to 0.
type Event struct {
	Channel uint8
	Command uint8
	Info    uint8
}

type InstrumentType uint8

const (
	InstrumentEmpty InstrumentType = iota
	InstrumentSample
	InstrumentAdlibMelody
	InstrumentAdlibBassDrum
	InstrumentAdlibSnare
	InstrumentAdlibTom
	InstrumentAdlibCymbal
	InstrumentAdlibHihat
)

func (t InstrumentType) IsEmpty() bool { return t == InstrumentEmpty }

type Instrument struct {
	Type InstrumentType

	// Filename is a DOS file name of the instrument source.
	Filename string

	// Name is a display name of the instrument.
	// Empty instruments never have a name.
	Name string
}

// ParserConfig configures the parser.
type ParserConfig struct {
	// NeedStrings makes the parser decode the instrument strings.
	// Modules parsed without this flag have empty instrument
	// names and filenames; the title is always decoded.
	NeedStrings bool
}

// Parser decodes S3M files.
//
// A parser can be reused to decode several files,
// it will recycle the memory used by the previous module.
// Therefore, a module returned by the parser is only valid
// until the next parse call.
type Parser struct {
	impl *parser
}

func NewParser(config ParserConfig) *Parser {
	return &Parser{impl: newParser(config)}
}

// ParseFromBytes decodes S3M file data.
//
// A non-nil error is usually a *ParseError object.
func (p *Parser) ParseFromBytes(data []byte) (*Module, error) {
	if err := p.impl.Parse(data); err != nil {
		return nil, err
	}
	m := p.impl.module
	return &m, nil
}

// Parse reads the entire S3M file from r and decodes it.
func (p *Parser) Parse(r io.Reader) (*Module, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read data: %w", err)
	}
	return p.ParseFromBytes(data)
}

// Parse reads S3M file data and decodes it into a module.
// All instrument strings are decoded.
//
// A non-nil error is usually a *ParseError object.
func Parse(r io.Reader) (*Module, error) {
	p := NewParser(ParserConfig{NeedStrings: true})
	return p.Parse(r)
}
