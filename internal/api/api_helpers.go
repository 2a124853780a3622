package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
)

type requestBodyTooLargeError struct {
	Limit int64
}

func (e *requestBodyTooLargeError) Error() string {
	return fmt.Sprintf("request body too large (max %d bytes)", e.Limit)
}

// DecodeBody decodes the JSON request body into v, rejecting unknown fields
// and trailing data.
func DecodeBody(r *http.Request, v interface{}) error {
	if r.Body == nil {
		return fmt.Errorf("request body is required")
	}
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return &requestBodyTooLargeError{Limit: maxErr.Limit}
		}
		return fmt.Errorf("invalid request body: %w", err)
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return &requestBodyTooLargeError{Limit: maxErr.Limit}
		}
		return fmt.Errorf("invalid request body: must contain a single JSON value")
	}
	return nil
}

// PathParam extracts a named path parameter from the request URL (Go 1.22+
// ServeMux pattern matching, e.g. /platforms/{id}).
func PathParam(r *http.Request, name string) string {
	return r.PathValue(name)
}

// PathUint32 extracts and parses a named path parameter as a uint32.
func PathUint32(r *http.Request, name string) (uint32, error) {
	v := PathParam(r, name)
	n, err := strconv.ParseUint(v, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("%s: must be a non-negative integer", name)
	}
	return uint32(n), nil
}
