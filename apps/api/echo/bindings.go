package echoapi

import (
	"path/filepath"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/elevezen/elevezen/core"
)

var orderingParam = "ordering"

type Ordering struct {
	Orderings []core.DBOrdering
}

func (ord *Ordering) Bind(ctx echo.Context) {
	data := ctx.QueryParams()
	if len(data) == 0 {
		return
	}
	val, ok := data[orderingParam]
	if !ok || len(val) == 0 || val[0] == "" {
		return
	}

	for _, field := range strings.Split(val[0], ",") {
		field = strings.TrimSpace(field)
		descending := strings.HasPrefix(field, "-")
		if descending {
			field = field[1:] // drop "-"
		}
		ord.Orderings = append(ord.Orderings, core.DBOrdering{Field: field, Ascending: !descending})
	}
}

// saveUploadedAvatar stores the "avatar" multipart file under bucket/<name><ext>
// and returns its public URL.
func saveUploadedAvatar(ctx echo.Context, storage core.FileStorage, bucket, name string) (string, error) {
	fh, err := ctx.FormFile("avatar")
	if err != nil {
		return "", core.NewValidationError(nil, core.FieldError{Field: "avatar", Error: "this field is required"})
	}
	src, err := fh.Open()
	if err != nil {
		return "", errors.Wrap(err, "opening uploaded file")
	}
	defer src.Close()

	url, err := storage.Save(bucket, name+filepath.Ext(fh.Filename), src)
	return url, errors.Wrap(err, "saving uploaded file")
}
