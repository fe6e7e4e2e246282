package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/quasilyte/s3m"
	"github.com/quasilyte/s3m/s3mfile"
)

// This simple tool shows the S3M module info along with a
// simulated playback position (no sound is produced).
// Press SPACE to start/pause the clock, R to rewind it.

func main() {
	flag.Usage = func() {
		fmt.Printf("usage: go run ./cmd/ebitengine-example path/to/music.s3m\n")
		flag.PrintDefaults()
	}
	flag.Parse()
	if len(flag.Args()) < 1 {
		panic("expected at least 1 command-line argument")
	}
	filename := flag.Args()[0]

	data, err := os.ReadFile(filename)
	if err != nil {
		panic(fmt.Errorf("read S3M file: %v", err))
	}
	s3mParser := s3mfile.NewParser(s3mfile.ParserConfig{NeedStrings: true})
	s3mModule, err := s3mParser.ParseFromBytes(data)
	if err != nil {
		panic(fmt.Errorf("parsing S3M file: %v", err))
	}
	info := s3m.NewInfo(s3mModule, int64(len(data)), s3m.SimulationConfig{})

	g := &game{
		info:     info,
		module:   s3mModule,
		filename: filename,
		paused:   true,
	}

	ebiten.SetWindowTitle("s3m: " + filename)
	if err := ebiten.RunGame(g); err != nil {
		panic(err)
	}
}

type game struct {
	info   *s3m.Info
	module *s3mfile.Module

	filename string
	paused   bool

	elapsed  time.Duration
	lastTick time.Time
}

func (g *game) Update() error {
	now := time.Now()
	if !g.paused {
		g.elapsed += now.Sub(g.lastTick)
		if g.elapsed.Seconds() >= g.info.Duration {
			g.elapsed = 0
			g.paused = true
		}
	}
	g.lastTick = now

	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		g.paused = !g.paused
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		g.elapsed = 0
	}

	return nil
}

// currentOrder finds the order that is being played at the moment t.
func (g *game) currentOrder(t float64) int {
	current := -1
	best := -1.0
	for i, start := range g.info.Playback.OrderTimes {
		if start < 0 || start > t {
			continue
		}
		if start >= best {
			best = start
			current = i
		}
	}
	return current
}

func (g *game) Draw(screen *ebiten.Image) {
	t := g.elapsed.Seconds()

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", g.filename)
	fmt.Fprintf(&b, "title: %s\n", g.info.Title)
	fmt.Fprintf(&b, "tracker: %s\n", g.info.TrackerName)
	fmt.Fprintf(&b, "channels: %d (%d active)\n", g.info.NumChannels, g.info.NumActiveChannels)
	fmt.Fprintf(&b, "bitrate: %.2f kbit/s\n", g.info.Bitrate)
	b.WriteString("\n")
	fmt.Fprintf(&b, "%s / %s\n", formatTime(t), formatTime(g.info.Duration))
	if order := g.currentOrder(t); order != -1 {
		fmt.Fprintf(&b, "order %d/%d (pattern %d)\n",
			order, len(g.module.PatternOrder)-1, g.module.PatternOrder[order])
	}
	if g.paused {
		b.WriteString("\nPaused... press SPACE\n")
	}
	b.WriteString("\n")
	for _, name := range strings.Split(g.info.Comment, "/") {
		b.WriteString(name)
		b.WriteByte('\n')
	}

	ebitenutil.DebugPrint(screen, b.String())
}

func (g *game) Layout(_, _ int) (int, int) {
	return 640, 480
}

func formatTime(seconds float64) string {
	d := time.Duration(seconds * float64(time.Second))
	return fmt.Sprintf("%02d:%02d", int(d.Minutes()), int(d.Seconds())%60)
}
