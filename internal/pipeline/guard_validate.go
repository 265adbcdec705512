package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Target selects which part of the request a schema applies to.
type Target string

const (
	TargetBody   Target = "body"
	TargetQuery  Target = "query"
	TargetParams Target = "params"
)

// FieldType is the expected type of a schema field.
type FieldType string

const (
	TypeString FieldType = "string"
	TypeInt    FieldType = "int"
	TypeFloat  FieldType = "float"
	TypeBool   FieldType = "bool"
)

// Field declares the constraints for one schema field. Length bounds apply
// to strings; value bounds apply to ints and floats.
type Field struct {
	Type     FieldType
	Required bool
	MinLen   int
	MaxLen   int
	Min      *float64
	Max      *float64
}

// Schema maps field names to their constraints.
type Schema map[string]Field

// Num returns a pointer to v, for use as a Field bound.
func Num(v float64) *float64 { return &v }

// validateGuard checks one request target against a schema. Every field is
// examined and all failures are reported together, sorted by field name.
type validateGuard struct {
	target   Target
	schema   Schema
	fields   []string // schema keys, sorted once at compile time
	validate *validator.Validate
}

func newValidateGuard(v ValidateSchema, validate *validator.Validate) (*validateGuard, error) {
	switch v.Target {
	case TargetBody, TargetQuery, TargetParams:
	default:
		return nil, fmt.Errorf("schema requirement: unknown target %q", v.Target)
	}

	fields := make([]string, 0, len(v.Schema))
	for name, field := range v.Schema {
		switch field.Type {
		case TypeString, TypeInt, TypeFloat, TypeBool:
		default:
			return nil, fmt.Errorf("schema requirement: field %q has unknown type %q", name, field.Type)
		}
		fields = append(fields, name)
	}
	sort.Strings(fields)

	return &validateGuard{
		target:   v.Target,
		schema:   v.Schema,
		fields:   fields,
		validate: validate,
	}, nil
}

func (g *validateGuard) Name() string { return "validate" }

func (g *validateGuard) Check(ctx context.Context, req *Request) error {
	values, failure := g.extract(req)
	if failure != nil {
		return Validation([]FieldError{*failure})
	}

	var failures []FieldError
	for _, name := range g.fields {
		field := g.schema[name]

		raw, present := values[name]
		if !present || raw == nil {
			if field.Required {
				failures = append(failures, FieldError{Field: name, Message: "is required"})
			}
			continue
		}

		value, msg := coerce(field.Type, raw)
		if msg == "" {
			msg = g.checkBounds(field, value)
		}
		if msg != "" {
			failures = append(failures, FieldError{Field: name, Message: msg})
		}
	}

	if len(failures) > 0 {
		return Validation(failures)
	}
	return nil
}

// extract pulls the target's fields into a uniform map. Body fields keep
// their JSON types; query and params values are strings and get coerced
// later.
func (g *validateGuard) extract(req *Request) (map[string]any, *FieldError) {
	switch g.target {
	case TargetQuery:
		values := make(map[string]any, len(req.Query))
		for name, vs := range req.Query {
			if len(vs) > 0 {
				values[name] = vs[0]
			}
		}
		return values, nil

	case TargetParams:
		values := make(map[string]any, len(req.Params))
		for name, v := range req.Params {
			values[name] = v
		}
		return values, nil

	default: // TargetBody
		if len(req.Body) == 0 {
			return map[string]any{}, nil
		}
		var values map[string]any
		if err := json.Unmarshal(req.Body, &values); err != nil {
			return nil, &FieldError{Field: "body", Message: "must be a valid JSON object"}
		}
		return values, nil
	}
}

// coerce converts a raw field value to the declared type. JSON values must
// already have the right type; string values from the query or params are
// parsed. Returns the coerced value or a failure message.
func coerce(typ FieldType, raw any) (any, string) {
	switch typ {
	case TypeString:
		s, ok := raw.(string)
		if !ok {
			return nil, "must be a string"
		}
		return s, ""

	case TypeInt:
		switch v := raw.(type) {
		case float64: // JSON number
			if v != math.Trunc(v) {
				return nil, "must be an integer"
			}
			return int64(v), ""
		case string:
			n, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				return nil, "must be an integer"
			}
			return n, ""
		default:
			return nil, "must be an integer"
		}

	case TypeFloat:
		switch v := raw.(type) {
		case float64:
			return v, ""
		case string:
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return nil, "must be a number"
			}
			return f, ""
		default:
			return nil, "must be a number"
		}

	default: // TypeBool
		switch v := raw.(type) {
		case bool:
			return v, ""
		case string:
			b, err := strconv.ParseBool(v)
			if err != nil {
				return nil, "must be a boolean"
			}
			return b, ""
		default:
			return nil, "must be a boolean"
		}
	}
}

// checkBounds applies the field's bounds to an already coerced value using
// the validator tag syntax. Returns "" when the value is in bounds.
func (g *validateGuard) checkBounds(field Field, value any) string {
	var tags []string
	switch field.Type {
	case TypeString:
		if field.MinLen > 0 {
			tags = append(tags, fmt.Sprintf("min=%d", field.MinLen))
		}
		if field.MaxLen > 0 {
			tags = append(tags, fmt.Sprintf("max=%d", field.MaxLen))
		}
	case TypeInt, TypeFloat:
		if field.Min != nil {
			tags = append(tags, "min="+formatBound(*field.Min))
		}
		if field.Max != nil {
			tags = append(tags, "max="+formatBound(*field.Max))
		}
	}
	if len(tags) == 0 {
		return ""
	}

	err := g.validate.Var(value, strings.Join(tags, ","))
	if err == nil {
		return ""
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "is invalid"
	}

	switch verrs[0].Tag() {
	case "min":
		if field.Type == TypeString {
			if field.MinLen == 1 {
				return "must not be empty"
			}
			return fmt.Sprintf("must be at least %d characters", field.MinLen)
		}
		return "must be at least " + formatBound(*field.Min)
	case "max":
		if field.Type == TypeString {
			return fmt.Sprintf("must be at most %d characters", field.MaxLen)
		}
		return "must be at most " + formatBound(*field.Max)
	default:
		return "is invalid"
	}
}

func formatBound(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
