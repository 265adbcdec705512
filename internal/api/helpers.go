package api

import (
	"encoding/json"
	"errors"
	"strconv"

	"github.com/mhutton/relay-api/internal/domain"
	"github.com/mhutton/relay-api/internal/pipeline"
)

// decodeBody unmarshals a request body into v. Routes validate body fields
// through their schema before the handler runs, so a failure here means
// the payload did not survive transport intact.
func decodeBody(req *pipeline.Request, v any) error {
	if len(req.Body) == 0 {
		return pipeline.Validation([]pipeline.FieldError{
			{Field: "body", Message: "must not be empty"},
		})
	}
	if err := json.Unmarshal(req.Body, v); err != nil {
		return pipeline.Validation([]pipeline.FieldError{
			{Field: "body", Message: "must be a valid JSON object"},
		})
	}
	return nil
}

// domainValidationError converts domain validation sentinels into field
// level validation errors. Unrecognized errors pass through unchanged and
// surface as internal failures.
func domainValidationError(err error) error {
	field := ""
	switch {
	case errors.Is(err, domain.ErrEmptyUsername),
		errors.Is(err, domain.ErrUsernameTooShort),
		errors.Is(err, domain.ErrUsernameTooLong):
		field = "username"
	case errors.Is(err, domain.ErrEmptyPassword),
		errors.Is(err, domain.ErrPasswordTooShort),
		errors.Is(err, domain.ErrPasswordTooLong):
		field = "password"
	case errors.Is(err, domain.ErrInvalidRole):
		field = "role"
	default:
		return err
	}
	return pipeline.Validation([]pipeline.FieldError{
		{Field: field, Message: err.Error()},
	})
}

// queryLimit reads the limit query parameter, falling back to def when the
// parameter is absent. Bounds are enforced by the route schema.
func queryLimit(req *pipeline.Request, def int) int {
	raw := req.Query.Get("limit")
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}
