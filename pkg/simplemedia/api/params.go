package api

import (
	"fmt"
	"net/http"
)

// ParseBoolean reads a boolean query parameter. An absent parameter yields
// def; only "true" and "false" are accepted otherwise.
func ParseBoolean(r *http.Request, name string, def bool) (bool, error) {
	values, ok := r.URL.Query()[name]
	if !ok || len(values) == 0 {
		return def, nil
	}

	switch values[0] {
	case "true":
		return true, nil
	case "false":
		return false, nil
	default:
		return false, NewError(http.StatusBadRequest, CodeInvalidParam,
			fmt.Sprintf("Boolean query parameter %q must be one of ['true', 'false']", name))
	}
}
