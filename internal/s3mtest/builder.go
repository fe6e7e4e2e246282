// Package s3mtest builds synthetic S3M files for tests.
package s3mtest

import (
	"encoding/binary"
)

type Cell struct {
	Channel uint8

	HasNote    bool
	Note       uint8
	Instrument uint8

	HasVolume bool
	Volume    uint8

	HasEffect bool
	Command   uint8
	Info      uint8
}

// Effect returns a cell that only carries an effect.
func Effect(channel, command, info uint8) Cell {
	return Cell{Channel: channel, HasEffect: true, Command: command, Info: info}
}

type Pattern struct {
	// Rows are padded with empty rows up to 64,
	// unless Short is set.
	Rows  [][]Cell
	Short bool

	// Trailer is written after the last row terminator.
	Trailer []byte
}

type Instrument struct {
	Type     uint8
	Filename string
	Name     string
}

// File describes an S3M file to be built.
// Zero values are replaced by sensible defaults.
type File struct {
	Title          string
	TrackerVersion uint16
	Signature      string
	Speed          uint8
	Tempo          uint8

	// ChannelTable defaults to 16 enabled channels.
	ChannelTable []uint8

	Orders      []uint8
	Instruments []Instrument
	Patterns    []Pattern
}

func align16(n int) int {
	return (n + 15) &^ 15
}

func (f *File) Build() []byte {
	instrumentData := make([][]byte, len(f.Instruments))
	for i, inst := range f.Instruments {
		instrumentData[i] = encodeInstrument(inst)
	}
	patternData := make([][]byte, len(f.Patterns))
	for i, pat := range f.Patterns {
		patternData[i] = encodePattern(pat)
	}

	tablesEnd := 64 + 32 + len(f.Orders) + 2*len(f.Instruments) + 2*len(f.Patterns)
	offset := align16(tablesEnd)
	instrumentPointers := make([]uint16, len(instrumentData))
	for i, data := range instrumentData {
		instrumentPointers[i] = uint16(offset / 16)
		offset = align16(offset + len(data))
	}
	patternPointers := make([]uint16, len(patternData))
	for i, data := range patternData {
		patternPointers[i] = uint16(offset / 16)
		offset = align16(offset + len(data))
	}
	// The last chunk is not padded.
	size := offset
	if n := len(patternData); n != 0 {
		size = int(patternPointers[n-1])*16 + len(patternData[n-1])
	} else if n := len(instrumentData); n != 0 {
		size = int(instrumentPointers[n-1])*16 + len(instrumentData[n-1])
	}
	if size < tablesEnd {
		size = tablesEnd
	}

	out := make([]byte, size)
	copy(out[0:28], f.Title)
	out[28] = 0x1A
	out[29] = 16
	binary.LittleEndian.PutUint16(out[32:], uint16(len(f.Orders)))
	binary.LittleEndian.PutUint16(out[34:], uint16(len(f.Instruments)))
	binary.LittleEndian.PutUint16(out[36:], uint16(len(f.Patterns)))
	binary.LittleEndian.PutUint16(out[40:], f.TrackerVersion)
	binary.LittleEndian.PutUint16(out[42:], 2)
	signature := f.Signature
	if signature == "" {
		signature = "SCRM"
	}
	copy(out[44:48], signature)
	out[48] = 64
	out[49] = f.Speed
	out[50] = f.Tempo
	out[51] = 0xB0
	out[53] = 0xFC

	channels := f.ChannelTable
	if channels == nil {
		channels = make([]uint8, 32)
		for i := range channels {
			if i < 16 {
				channels[i] = uint8(i)
			} else {
				channels[i] = 255
			}
		}
	}
	copy(out[64:96], channels)

	pos := 96
	pos += copy(out[pos:], f.Orders)
	for _, ptr := range instrumentPointers {
		binary.LittleEndian.PutUint16(out[pos:], ptr)
		pos += 2
	}
	for _, ptr := range patternPointers {
		binary.LittleEndian.PutUint16(out[pos:], ptr)
		pos += 2
	}

	for i, data := range instrumentData {
		copy(out[int(instrumentPointers[i])*16:], data)
	}
	for i, data := range patternData {
		copy(out[int(patternPointers[i])*16:], data)
	}

	return out
}

func encodeInstrument(inst Instrument) []byte {
	if inst.Type == 0 {
		data := make([]byte, 13)
		copy(data[1:], inst.Filename)
		return data
	}
	data := make([]byte, 80)
	data[0] = inst.Type
	copy(data[1:13], inst.Filename)
	data[13+15] = 64 // Volume
	copy(data[48:76], inst.Name)
	copy(data[76:], "SCRS")
	return data
}

func encodePattern(pat Pattern) []byte {
	data := []byte{0, 0}

	numRows := len(pat.Rows)
	if !pat.Short && numRows < 64 {
		numRows = 64
	}
	for i := 0; i < numRows; i++ {
		if i < len(pat.Rows) {
			for _, c := range pat.Rows[i] {
				data = appendCell(data, c)
			}
		}
		data = append(data, 0)
	}

	binary.LittleEndian.PutUint16(data, uint16(len(data)))
	return append(data, pat.Trailer...)
}

func appendCell(dst []byte, c Cell) []byte {
	mask := c.Channel & 0x1F
	if c.HasNote {
		mask |= 0x20
	}
	if c.HasVolume {
		mask |= 0x40
	}
	if c.HasEffect {
		mask |= 0x80
	}
	dst = append(dst, mask)
	if c.HasNote {
		dst = append(dst, c.Note, c.Instrument)
	}
	if c.HasVolume {
		dst = append(dst, c.Volume)
	}
	if c.HasEffect {
		dst = append(dst, c.Command, c.Info)
	}
	return dst
}
