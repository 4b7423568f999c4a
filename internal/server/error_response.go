package server

import (
	"errors"

	"github.com/go-playground/validator/v10"
)

var (
	// api errors
	ErrInvalidParams = errors.New("invalid parameters")
	ErrInternal      = errors.New("conversion failed")
)

type ErrorField struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

type ErrorResponse struct {
	Error  string       `json:"error"`
	Fields []ErrorField `json:"fields,omitempty"`
	// Kind, Line and Column locate parse errors in the submitted text
	Kind   string `json:"kind,omitempty"`
	Line   int    `json:"line,omitempty"`
	Column int    `json:"column,omitempty"`
}

func NewErrorResponse(err error, fields ...ErrorField) ErrorResponse {
	return ErrorResponse{Error: err.Error(), Fields: fields}
}

// ExtractErrorFields lists the failed validations of a binding error.
// Other errors, like malformed JSON, become a single field-less entry.
func ExtractErrorFields(err error) []ErrorField {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []ErrorField{{Reason: err.Error()}}
	}

	fields := make([]ErrorField, 0, len(verrs))
	for _, fe := range verrs {
		reason := "failed on " + fe.Tag()
		switch fe.Tag() {
		case "required":
			reason = "is required"
		case "oneof":
			reason = "must be one of: " + fe.Param()
		case "max":
			reason = "must be at most " + fe.Param() + " characters"
		}
		fields = append(fields, ErrorField{Field: fe.Field(), Reason: reason})
	}
	return fields
}
