package echoapi

import (
	"fmt"
	"mime/multipart"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/campuslink/campuslink/core"
)

const imageField = "image"

// bindImage returns the optional uploaded image. Callers must close the returned file.
func bindImage(ctx echo.Context, maxSize int64) (*core.Blob, multipart.File, error) {
	fh, err := ctx.FormFile(imageField)
	if err != nil {
		if err == http.ErrMissingFile || err == http.ErrNotMultipart {
			return nil, nil, nil
		}
		return nil, nil, errors.Wrap(err, "reading image")
	}
	if maxSize > 0 && fh.Size > maxSize {
		return nil, nil, core.NewValidationError(nil, core.FieldError{
			Field: imageField,
			Error: fmt.Sprintf("file must not exceed %d bytes", maxSize),
		})
	}

	f, err := fh.Open()
	if err != nil {
		return nil, nil, errors.Wrap(err, "opening image")
	}
	return &core.Blob{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get(echo.HeaderContentType),
		Size:        fh.Size,
		Body:        f,
	}, f, nil
}
