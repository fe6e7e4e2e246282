package s3m

import (
	"fmt"
	"io"

	"github.com/quasilyte/s3m/s3mfile"
)

// WriteTitle overwrites the module title inside the S3M file.
//
// This is the only S3M zone that is ever rewritten;
// the title is padded or truncated to fit it.
func WriteTitle(w io.WriterAt, title string) error {
	zone := s3mfile.EncodeTitle(title)
	if _, err := w.WriteAt(zone[:], s3mfile.TitleOffset); err != nil {
		return fmt.Errorf("write title: %w", err)
	}
	return nil
}
