package event

import (
	"bytes"
	"io"
	"path"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/pkg/errors"

	"github.com/campuslink/campuslink/core"
)

// sniffLen is the number of leading bytes mimetype needs to detect every format it knows.
const sniffLen = 3072

var errNotAnImage = errors.New("file must be an image")

// prepareImage detects the image's MIME type from its content, rejecting anything that is not an image.
// The returned Blob reads the full original content and is seekable.
func prepareImage(img core.Blob) (core.Blob, error) {
	head := make([]byte, sniffLen)
	n, err := io.ReadFull(img.Body, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return core.Blob{}, errors.Wrap(err, "reading image header")
	}
	head = head[:n]

	mtype := mimetype.Detect(head)
	if !strings.HasPrefix(mtype.String(), "image/") {
		return core.Blob{}, core.NewValidationError(nil, core.FieldError{Field: "image", Error: errNotAnImage.Error()})
	}

	img.ContentType = mtype.String()
	if path.Ext(img.Filename) == "" {
		img.Filename += mtype.Extension()
	}
	if seeker, ok := img.Body.(io.ReadSeeker); ok {
		if _, err = seeker.Seek(0, io.SeekStart); err != nil {
			return core.Blob{}, errors.Wrap(err, "rewinding image")
		}
		return img, nil
	}
	// S3 needs a seekable body to sign the payload
	rest, err := io.ReadAll(img.Body)
	if err != nil {
		return core.Blob{}, errors.Wrap(err, "reading image")
	}
	img.Body = bytes.NewReader(append(head, rest...))
	return img, nil
}
