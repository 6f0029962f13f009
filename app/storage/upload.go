package storage

import (
	"fmt"
	"io"

	"github.com/gabriel-vasile/mimetype"
)

var acceptedTypes = []string{"image/png", "image/jpg", "image/jpeg"}

// SniffImage detects the content type of f from its leading bytes and rewinds
// it. ok is false for anything that is not an accepted image; such uploads are
// treated as if no image had been sent.
func SniffImage(f io.ReadSeeker) (contentType string, ok bool, err error) {
	mtype, err := mimetype.DetectReader(f)
	if err != nil {
		return "", false, fmt.Errorf("detect content type: %w", err)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return "", false, fmt.Errorf("rewind upload: %w", err)
	}

	for _, accepted := range acceptedTypes {
		if mtype.Is(accepted) {
			return mtype.String(), true, nil
		}
	}
	return mtype.String(), false, nil
}
