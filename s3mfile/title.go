package s3mfile

import (
	"golang.org/x/text/encoding/charmap"
)

// The title zone is the only part of the file that can be rewritten.
const (
	TitleOffset = 0
	TitleSize   = 28
)

// EncodeTitle converts a title into its on-disk form.
//
// The result is a Latin-1 string padded with NUL bytes.
// Titles longer than TitleSize bytes are truncated;
// runes that Latin-1 can't represent are replaced by '?'.
func EncodeTitle(title string) [TitleSize]byte {
	var zone [TitleSize]byte
	i := 0
	for _, r := range title {
		if i == TitleSize {
			break
		}
		b, ok := charmap.ISO8859_1.EncodeRune(r)
		if !ok {
			b = '?'
		}
		zone[i] = b
		i++
	}
	return zone
}
