package params

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
)

var ErrInvalidID = errors.New("id must be an integer")

// ParseID parses a resource id. Any integer is accepted; ids the store never
// issued, such as 0 or negatives, are left to the lookup to report as missing.
func ParseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, ErrInvalidID
	}
	return id, nil
}

// PathID reads the named chi URL parameter as an id.
// Route /roles/{roleID}, URL /api/roles/42 → PathID(r, "roleID") → 42
func PathID(r *http.Request, name string) (int64, error) {
	return ParseID(chi.URLParam(r, name))
}
