package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/quasilyte/s3m"
	"golang.org/x/term"
)

// This CLI tool prints the S3M module info, including its play time.
//
// When stdout is not a terminal, the output is printed
// as key=value lines that are easy to process by scripts.

func main() {
	newTitle := flag.String("title", "", "rewrite the module title before printing the info")
	maxRows := flag.Int("max-rows", 0, "limit the number of simulated rows (0 means the default limit)")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: s3minfo [flags] path/to/music.s3m...\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if len(flag.Args()) < 1 {
		flag.Usage()
		os.Exit(2)
	}

	config := s3m.SimulationConfig{MaxRows: *maxRows}
	p := &printer{
		w:   os.Stdout,
		tty: term.IsTerminal(int(os.Stdout.Fd())),
	}

	failed := false
	for _, filename := range flag.Args() {
		if *newTitle != "" {
			if err := rewriteTitle(filename, *newTitle); err != nil {
				fmt.Fprintf(os.Stderr, "s3minfo: %s: %v\n", filename, err)
				failed = true
				continue
			}
		}
		info, err := readInfo(filename, config)
		if err != nil {
			fmt.Fprintf(os.Stderr, "s3minfo: %s: %v\n", filename, err)
			failed = true
			continue
		}
		p.Print(filename, info)
	}
	if failed {
		os.Exit(1)
	}
}

func readInfo(filename string, config s3m.SimulationConfig) (*s3m.Info, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return s3m.ReadInfo(f, config)
}

func rewriteTitle(filename, title string) error {
	// Make sure it's an S3M file before touching it.
	if _, err := readInfo(filename, s3m.SimulationConfig{}); err != nil {
		return err
	}
	f, err := os.OpenFile(filename, os.O_WRONLY, 0)
	if err != nil {
		return err
	}
	if err := s3m.WriteTitle(f, title); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

type printer struct {
	w   io.Writer
	tty bool
}

func (p *printer) Print(filename string, info *s3m.Info) {
	fields := [][2]string{
		{"file", filename},
		{"title", info.Title},
		{"tracker", info.TrackerName},
		{"channels", strconv.Itoa(info.NumChannels)},
		{"active_channels", strconv.Itoa(info.NumActiveChannels)},
		{"duration", strconv.FormatFloat(info.Duration, 'f', 3, 64)},
		{"loop_duration", strconv.FormatFloat(info.Playback.LoopDuration, 'f', 3, 64)},
		{"bitrate", strconv.FormatFloat(info.Bitrate, 'f', 3, 64)},
		{"rows", strconv.Itoa(info.Playback.RowsPlayed)},
		{"truncated", strconv.FormatBool(info.Playback.Truncated)},
		{"comment", info.Comment},
	}

	if !p.tty {
		for _, f := range fields {
			fmt.Fprintf(p.w, "%s=%s\n", f[0], strconv.Quote(f[1]))
		}
		return
	}

	tw := tabwriter.NewWriter(p.w, 0, 4, 2, ' ', 0)
	for _, f := range fields {
		fmt.Fprintf(tw, "%s:\t%s\n", f[0], f[1])
	}
	fmt.Fprintln(tw)
	tw.Flush()
}
