package s3mfile

import (
	"encoding/binary"
	"fmt"
	"strings"
)

var trackerNames = [16]string{
	0x1: "ScreamTracker",
	0x2: "Imago Orpheus",
	0x3: "Impulse Tracker",
	0x4: "Schism Tracker",
	0x5: "OpenMPT",
	0xC: "Camoto/libgamemusic",
}

type parser struct {
	// Data holds the S3M file input data bytes.
	data []byte

	// Offset is our current position inside the data.
	// Instruments and patterns are reached by seeking,
	// so it doesn't always grow.
	offset int

	// Module holds the results of S3M parsing.
	module Module

	uint16pool slabPool[uint16]
	rowPool    slabPool[PatternRow]
	eventPool  slabPool[Event]

	scratchEvents []Event

	config ParserConfig

	needsReset bool

	// These fields below are needed for better error reporting.
	stage         string
	stageIndex    int
	subStage      string
	subStageIndex int
}

func newParser(config ParserConfig) *parser {
	p := &parser{
		config:        config,
		scratchEvents: make([]Event, 0, NumChannelSlots),
	}
	initSlabPool(&p.uint16pool, 1024, 4)
	initSlabPool(&p.rowPool, RowsPerPattern*32, 8)
	initSlabPool(&p.eventPool, 4096*4, 16)
	return p
}

func (p *parser) Parse(data []byte) error {
	p.data = data
	p.reset()
	p.needsReset = true
	return p.parse()
}

func (p *parser) reset() {
	if !p.needsReset {
		// This will only happen during the first run of the parser.
		return
	}

	p.offset = 0
	p.uint16pool.Reset()
	p.rowPool.Reset()
	p.eventPool.Reset()

	instruments := p.module.Instruments[:0]
	patterns := p.module.Patterns[:0]
	p.module = Module{
		Instruments: instruments,
		Patterns:    patterns,
	}
}

func (p *parser) startStage(name string) {
	p.stage = name
	p.stageIndex = -1
	p.subStage = ""
	p.subStageIndex = -1
}

func (p *parser) startSubStage(name string) {
	p.subStage = name
	p.subStageIndex = -1
}

func (p *parser) formatStage() string {
	var b strings.Builder
	b.Grow(len(p.stage) + len(p.subStage) + 16)
	b.WriteString(p.stage)
	if p.stageIndex >= 0 {
		fmt.Fprintf(&b, "[%d]", p.stageIndex)
	}
	if p.subStage != "" {
		b.WriteByte('.')
		b.WriteString(p.subStage)
		if p.subStageIndex >= 0 {
			fmt.Fprintf(&b, "[%d]", p.subStageIndex)
		}
	}
	return b.String()
}

func (p *parser) errorf(format string, args ...any) *ParseError {
	text := fmt.Sprintf(format, args...)
	if tag := p.formatStage(); tag != "" {
		text = tag + ": " + text
	}
	return &ParseError{
		Message: text,
		Offset:  p.offset,
	}
}

func (p *parser) dataBytesRemaining() int {
	return len(p.data) - p.offset
}

func (p *parser) ensure(l int, what string) {
	if p.dataBytesRemaining() < l {
		panic(p.errorf("unexpected EOF while reading %s", what))
	}
}

func (p *parser) seek(offset int, what string) {
	if offset < 0 || offset > len(p.data) {
		panic(p.errorf("%s offset %d is out of bounds", what, offset))
	}
	p.offset = offset
}

func (p *parser) skip(l int, what string) {
	p.ensure(l, what)
	p.offset += l
}

func (p *parser) read(l int, what string) []byte {
	p.ensure(l, what)
	b := p.data[p.offset : p.offset+l]
	p.offset += l
	return b
}

func (p *parser) readOptionalString(l int, what string) string {
	if !p.config.NeedStrings {
		p.skip(l, what)
		return ""
	}
	return p.readString(l, what)
}

func (p *parser) readString(l int, what string) string {
	return convertCstring(p.read(l, what))
}

func (p *parser) readWord(what string) uint16 {
	return binary.LittleEndian.Uint16(p.read(2, what))
}

func (p *parser) readByte(what string) uint8 {
	p.ensure(1, what)
	b := p.data[p.offset]
	p.offset++
	return b
}

func (p *parser) readWords(n int, what string) []uint16 {
	p.ensure(n*2, what)
	words := p.uint16pool.MakeSlice(n)
	for i := range words {
		words[i] = p.readWord(what)
	}
	return words
}

func (p *parser) parse() (err error) {
	defer func() {
		rv := recover()
		if rv != nil {
			if panicErr, ok := rv.(*ParseError); ok {
				err = panicErr
			} else {
				panic(rv)
			}
		}
	}()

	p.parseModule()

	return err // See the deferred call above
}

func (p *parser) parseModule() {
	p.startStage("header")
	p.parseHeader()

	p.startStage("tables")
	p.parseTables()

	p.startStage("instrument")
	for i, ptr := range p.module.InstrumentPointers {
		p.stageIndex = i
		p.module.Instruments = append(p.module.Instruments, p.parseInstrument(ptr))
	}

	p.startStage("pattern")
	for i, ptr := range p.module.PatternPointers {
		p.stageIndex = i
		p.module.Patterns = append(p.module.Patterns, p.parsePattern(ptr))
	}
}

func (p *parser) parseHeader() {
	p.module.Name = strings.TrimSpace(p.readString(TitleSize, "module name"))

	// 0x1A marker, file type and two reserved bytes.
	p.skip(4, "reserved")

	p.module.NumOrders = int(p.readWord("number of orders"))
	p.module.NumInstruments = int(p.readWord("number of instruments"))
	p.module.NumPatterns = int(p.readWord("number of patterns"))
	p.module.Flags = p.readWord("flags")

	p.module.TrackerVersion = p.readWord("tracker version")
	p.module.TrackerName = trackerNames[p.module.TrackerVersion>>12]

	p.skip(2, "sample format")

	if sig := p.read(4, "signature"); string(sig) != signature {
		e := p.errorf("expected %q signature, found %q", signature, sig)
		e.Err = ErrBadSignature
		panic(e)
	}

	p.skip(1, "global volume")
	p.module.InitialSpeed = int(p.readByte("initial speed"))
	p.module.InitialTempo = int(p.readByte("initial tempo"))

	p.skip(1, "master volume")
	p.skip(1, "ultra click removal")
	p.skip(1, "default panning")
	p.skip(8, "reserved")

	// The special pointer is never dereferenced.
	p.skip(2, "special pointer")
}

func (p *parser) parseTables() {
	// The tables have no framing: their sizes are only known
	// from the header counters, so the reading order is important.
	p.startSubStage("channel table")
	copy(p.module.ChannelTable[:], p.read(NumChannelSlots, "channel table"))

	p.startSubStage("order table")
	p.module.PatternOrder = p.read(p.module.NumOrders, "pattern order table")

	p.startSubStage("instrument pointers")
	p.module.InstrumentPointers = p.readWords(p.module.NumInstruments, "instrument pointers")

	p.startSubStage("pattern pointers")
	p.module.PatternPointers = p.readWords(p.module.NumPatterns, "pattern pointers")
}

func (p *parser) parseInstrument(ptr uint16) Instrument {
	var inst Instrument

	p.seek(paragraphOffset(ptr), "instrument")

	inst.Type = InstrumentType(p.readByte("instrument type"))
	inst.Filename = trimPadding(p.readOptionalString(12, "instrument filename"))

	if inst.Type.IsEmpty() {
		// Empty instruments are stored in a compact form;
		// there is nothing useful after the filename.
		return inst
	}

	p.skip(35, "instrument sample header")
	// The name field is always 28 bytes long,
	// no matter where the NUL terminator is.
	inst.Name = p.readOptionalString(28, "instrument name")
	p.skip(4, "instrument signature")

	return inst
}

func (p *parser) parsePattern(ptr uint16) Pattern {
	p.seek(paragraphOffset(ptr), "pattern")

	// The declared packed size is not reliable in some files.
	// Rows are counted instead, so the bytes after the last row
	// terminator are never touched.
	// A pattern that is cut by the end of file keeps the rows
	// that were fully decoded.
	if p.dataBytesRemaining() < 2 {
		return Pattern{}
	}
	p.skip(2, "pattern size")

	rows := p.rowPool.MakeSlice(RowsPerPattern)

	p.startSubStage("row")
	events := p.scratchEvents[:0]
	row := 0
	for row < RowsPerPattern && p.dataBytesRemaining() > 0 {
		p.subStageIndex = row
		mask := cellMask(p.readByte("cell mask"))
		if mask.IsRowEnd() {
			rows[row].Events = p.eventPool.Clone(events)
			events = events[:0]
			row++
			continue
		}
		cell, ok := p.parseCell(mask)
		if !ok {
			break
		}
		events = append(events, cell.toEvent())
	}
	p.scratchEvents = events[:0]

	return Pattern{Rows: rows[:row]}
}

func (p *parser) parseCell(mask cellMask) (packedCell, bool) {
	c := packedCell{mask: mask}
	if p.dataBytesRemaining() < mask.payloadSize() {
		return c, false
	}
	if mask.HasNote() {
		c.note = p.readByte("cell note")
		c.instrument = p.readByte("cell instrument")
	}
	if mask.HasVolume() {
		c.volume = p.readByte("cell volume")
	}
	if mask.HasEffect() {
		c.command = p.readByte("cell effect command")
		c.info = p.readByte("cell effect info")
	}
	return c, true
}
