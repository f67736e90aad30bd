package api

import (
	"encoding/json"
	"fmt"
)

// Validation failure reasons reported by the checkout endpoints.
const (
	ReasonOutOfStock = "OUT_OF_STOCK"
	ReasonNotFound   = "NOT_FOUND"
)

// Error is a non-2xx response. Error() yields the raw body text so the
// message matches what the backend sent; structured interpretation goes
// through Detail.
type Error struct {
	Status int
	Body   string
}

func (e *Error) Error() string {
	if e.Body != "" {
		return e.Body
	}
	return fmt.Sprintf("HTTP %d", e.Status)
}

// ValidationError is one entry of a checkout validation failure.
// Stock and Requested are only meaningful for OUT_OF_STOCK.
type ValidationError struct {
	ProductID int64  `json:"product_id"`
	Reason    string `json:"reason"`
	Stock     int64  `json:"stock"`
	Requested int64  `json:"requested"`
}

// Detail is the decoded backend error envelope: either a plain message
// or a list of validation errors.
type Detail struct {
	Message string
	Errors  []ValidationError
}

// Detail decodes the {"detail": ...} envelope the backend wraps errors
// in. The detail value is either a string or {"errors": [...]}. Returns
// ok=false for non-JSON bodies or unrecognized shapes; it never fails
// loudly, since error bodies are untrusted input.
func (e *Error) Detail() (Detail, bool) {
	var envelope struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal([]byte(e.Body), &envelope); err != nil || len(envelope.Detail) == 0 {
		return Detail{}, false
	}

	var message string
	if err := json.Unmarshal(envelope.Detail, &message); err == nil {
		return Detail{Message: message}, true
	}

	var structured struct {
		Errors []ValidationError `json:"errors"`
	}
	if err := json.Unmarshal(envelope.Detail, &structured); err == nil && len(structured.Errors) > 0 {
		return Detail{Errors: structured.Errors}, true
	}
	return Detail{}, false
}
