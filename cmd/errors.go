package cmd

import (
	"errors"

	"github.com/mercato-dev/mercato/internal/api"
)

// renderAPIError turns a gateway error into something printable. The
// backend wraps failures in a {"detail": ...} envelope; when that
// decodes we prefer its message, otherwise the raw error text stands.
func renderAPIError(err error) string {
	var apiErr *api.Error
	if !errors.As(err, &apiErr) {
		return err.Error()
	}
	detail, ok := apiErr.Detail()
	if !ok {
		return apiErr.Error()
	}
	if detail.Message != "" {
		return detail.Message
	}
	return apiErr.Error()
}
