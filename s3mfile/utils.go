package s3mfile

import (
	"bytes"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// convertCstring decodes a fixed-width Latin-1 field.
// The string ends at the first NUL byte (if any).
func convertCstring(data []byte) string {
	if i := bytes.IndexByte(data, 0); i != -1 {
		data = data[:i]
	}
	return decodeLatin1(data)
}

func decodeLatin1(data []byte) string {
	ascii := true
	for _, b := range data {
		if b >= utf8.RuneSelf {
			ascii = false
			break
		}
	}
	if ascii {
		return string(data)
	}

	var sb strings.Builder
	sb.Grow(len(data) * 2)
	for _, b := range data {
		sb.WriteRune(charmap.ISO8859_1.DecodeByte(b))
	}
	return sb.String()
}

// trimPadding removes the trailing NUL and space padding.
func trimPadding(s string) string {
	return strings.TrimRight(s, "\x00 ")
}

func paragraphOffset(ptr uint16) int {
	return int(ptr) * paragraphSize
}
