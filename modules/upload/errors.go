package upload

import (
	"net/http"

	"github.com/dmitrymomot/docvault/handler"
)

// ErrNoFiles is returned to clients that post a form without any files.
var ErrNoFiles = handler.NewHTTPError(http.StatusBadRequest, "no_files")
