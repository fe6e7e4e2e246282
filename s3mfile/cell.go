package s3mfile

// cellMask is the leading byte of every packed pattern cell.
//
//	bits 0-4: channel
//	bit 5:    note and instrument bytes follow
//	bit 6:    volume byte follows
//	bit 7:    effect command and info bytes follow
//
// A zero mask terminates the current row.
type cellMask uint8

const (
	cellChannelBits cellMask = 0b0001_1111
	cellHasNote     cellMask = 0b0010_0000
	cellHasVolume   cellMask = 0b0100_0000
	cellHasEffect   cellMask = 0b1000_0000
)

func (m cellMask) IsRowEnd() bool { return m == 0 }

func (m cellMask) Channel() uint8 { return uint8(m & cellChannelBits) }

func (m cellMask) HasNote() bool { return m&cellHasNote != 0 }

func (m cellMask) HasVolume() bool { return m&cellHasVolume != 0 }

func (m cellMask) HasEffect() bool { return m&cellHasEffect != 0 }

// packedCell is a fully decoded cell.
// Most of its fields are not needed after the decoding,
// see toEvent.
type packedCell struct {
	mask       cellMask
	note       uint8
	instrument uint8
	volume     uint8
	command    uint8
	info       uint8
}

func (c packedCell) toEvent() Event {
	return Event{
		Channel: c.mask.Channel(),
		Command: c.command,
		Info:    c.info,
	}
}

// payloadSize reports the number of bytes that follow the mask.
func (m cellMask) payloadSize() int {
	n := 0
	if m.HasNote() {
		n += 2
	}
	if m.HasVolume() {
		n++
	}
	if m.HasEffect() {
		n += 2
	}
	return n
}
