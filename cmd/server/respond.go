package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/hlog"

	"github.com/Simplici0/o.frames/internal/catalog"
	"github.com/Simplici0/o.frames/internal/pricing"
)

const maxBodyBytes = 1 << 20

// apiError is the body of every non-2xx JSON response.
type apiError struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

var errMalformedBody = errors.New("malformed request body")

// sentinelCodes maps engine and store errors to response codes and statuses.
var sentinelCodes = []struct {
	err    error
	code   string
	status int
}{
	{pricing.ErrInvalidDimension, "invalid_dimension", http.StatusUnprocessableEntity},
	{pricing.ErrInvalidCatalogEntry, "invalid_catalog_entry", http.StatusUnprocessableEntity},
	{pricing.ErrInvalidQuantity, "invalid_quantity", http.StatusUnprocessableEntity},
	{pricing.ErrInvalidFootage, "invalid_footage", http.StatusUnprocessableEntity},
	{pricing.ErrNoOptionsAvailable, "no_options_available", http.StatusUnprocessableEntity},
	{pricing.ErrUndefined, "undefined", http.StatusUnprocessableEntity},
	{catalog.ErrNotFound, "not_found", http.StatusNotFound},
	{errMalformedBody, "bad_request", http.StatusBadRequest},
}

// fieldCodes picks the response code for a validation failure by the
// top-level request field it happened in.
var fieldCodes = map[string]string{
	"dimensions":     "invalid_dimension",
	"rates":          "invalid_catalog_entry",
	"options":        "invalid_catalog_entry",
	"box_price":      "invalid_catalog_entry",
	"sheets_per_box": "invalid_catalog_entry",
	"sheet_width":    "invalid_catalog_entry",
	"sheet_height":   "invalid_catalog_entry",
	"quantity":       "invalid_quantity",
	"footage":        "invalid_footage",
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return fld.Name
		}
		return name
	})
	return v
}

// decodeJSON reads a single JSON document into dst and validates it.
func (s *server) decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: %v", errMalformedBody, err)
	}
	if dec.More() {
		return fmt.Errorf("%w: trailing data after JSON document", errMalformedBody)
	}
	return s.validate.Struct(dst)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps err onto a status code and a JSON error body.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		writeJSON(w, http.StatusUnprocessableEntity, validationError(verrs))
		return
	}

	for _, sc := range sentinelCodes {
		if errors.Is(err, sc.err) {
			writeJSON(w, sc.status, apiError{Code: sc.code, Message: err.Error()})
			return
		}
	}

	hlog.FromRequest(r).Error().Err(err).Msg("request failed")
	writeJSON(w, http.StatusInternalServerError, apiError{Code: "internal", Message: "internal server error"})
}

func validationError(verrs validator.ValidationErrors) apiError {
	body := apiError{Code: "validation_failed", Message: "request validation failed", Fields: map[string]string{}}
	for i, fe := range verrs {
		field := fieldPath(fe.Namespace())
		body.Fields[field] = describeFieldError(fe)
		if i == 0 {
			top := field
			if i := strings.IndexAny(top, ".["); i >= 0 {
				top = top[:i]
			}
			if code, ok := fieldCodes[top]; ok {
				body.Code = code
			}
		}
	}
	return body
}

// fieldPath drops the root struct name from a validator namespace.
func fieldPath(namespace string) string {
	if i := strings.IndexByte(namespace, '.'); i >= 0 {
		return namespace[i+1:]
	}
	return namespace
}

func describeFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "required_without":
		return "is required when " + fe.Param() + " is absent"
	case "excluded_with":
		return "cannot be combined with " + fe.Param()
	case "gt":
		return "must be greater than " + fe.Param()
	case "gte":
		return "must be greater than or equal to " + fe.Param()
	case "min":
		return "must be at least " + fe.Param()
	case "oneof":
		return "must be one of: " + fe.Param()
	default:
		return "is invalid"
	}
}
