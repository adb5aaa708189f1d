package echoapi

import (
	"io"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/Adeanak/web-pendidikanalhikmahfix-sub000/core"
)

const (
	orderingParam = "ordering"
	fileField     = "file"
)

var errMissingFile = core.NewValidationError(
	errors.New("no file uploaded"),
	core.FieldError{Field: fileField, Error: "this field is required"},
)

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
		if field != "" {
			ord.Orderings = append(ord.Orderings, core.DBOrdering{Field: field, Ascending: !descending})
		}
	}
}

type (
	SuccessResponse struct {
		Success string `json:"success"`
	}

	// upload is a file received in the `file` field of a multipart form.
	upload struct {
		Filename    string
		ContentType string
		Body        io.ReadCloser
	}
)

func bindUpload(ctx echo.Context) (*upload, error) {
	fh, err := ctx.FormFile(fileField)
	if err != nil {
		return nil, errMissingFile
	}
	f, err := fh.Open()
	if err != nil {
		return nil, errors.Wrap(err, "opening uploaded file")
	}
	return &upload{Filename: fh.Filename, ContentType: fh.Header.Get(echo.HeaderContentType), Body: f}, nil
}

// bindIDs reads the `id` query params of a bulk delete.
func bindIDs(ctx echo.Context) []string {
	var ids []string
	for _, id := range ctx.QueryParams()["id"] {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}
