// Package s3m computes the ScreamTracker 3 module properties
// that are not stored in the file: its play time and bitrate.
package s3m

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/quasilyte/s3m/s3mfile"
)

// Info is a summary of the S3M module properties,
// including the ones that can't be read directly from the file.
type Info struct {
	Title string

	// Comment contains the instrument names joined by "/".
	// Trackers store the song notes inside the instrument names,
	// so this is the closest thing to a song comment S3M has.
	Comment string

	// Duration is a song play time, in seconds.
	Duration float64

	// Bitrate is an average file bitrate, in kbit/s.
	Bitrate float64

	NumChannels       int
	NumActiveChannels int

	TrackerName string

	// Playback holds the detailed simulation results.
	Playback Playback
}

// ReadInfo decodes the S3M file from r and collects its info.
// The file size is the number of bytes read from r.
func ReadInfo(r io.Reader, config SimulationConfig) (*Info, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read data: %w", err)
	}
	m, err := s3mfile.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	return NewInfo(m, int64(len(data)), config), nil
}

// NewInfo collects the info of the already parsed module.
//
// The module is expected to be parsed with the NeedStrings option,
// otherwise the comment will be empty.
func NewInfo(m *s3mfile.Module, fileSize int64, config SimulationConfig) *Info {
	pb := Simulate(m, config)
	return &Info{
		Title:             m.Name,
		Comment:           instrumentComment(m.Instruments),
		Duration:          pb.Duration,
		Bitrate:           calcBitrate(fileSize, pb.Duration),
		NumChannels:       m.NumChannels(),
		NumActiveChannels: m.NumActiveChannels(),
		TrackerName:       m.TrackerName,
		Playback:          pb,
	}
}

func instrumentComment(instruments []s3mfile.Instrument) string {
	var b strings.Builder
	for _, inst := range instruments {
		name := strings.TrimSpace(inst.Name)
		if name == "" {
			continue
		}
		if b.Len() != 0 {
			b.WriteByte('/')
		}
		b.WriteString(name)
	}
	return b.String()
}

// calcBitrate follows the convention of the tag readers:
// bytes per second divided by 1000.
func calcBitrate(fileSize int64, duration float64) float64 {
	if duration <= 0 {
		return 0
	}
	return float64(fileSize) / duration / 1000
}
