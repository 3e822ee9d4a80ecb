// Package validation checks submitted SQL before it reaches the model.
package validation

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"sql-explainer/pkg/errors"
)

// Validator rejects input the explainer should not forward.
type Validator struct {
	maxBytes int
}

// NewValidator creates a validator accepting at most maxBytes of SQL.
func NewValidator(maxBytes int) *Validator {
	return &Validator{maxBytes: maxBytes}
}

// Validate returns an INVALID_INPUT error describing the first problem with
// sql, or nil. Empty input is valid.
func (v *Validator) Validate(sql string) error {
	if v.maxBytes > 0 && len(sql) > v.maxBytes {
		return errors.New(errors.CodeInvalidInput,
			fmt.Sprintf("sql_code is too large (%d bytes, limit %d)", len(sql), v.maxBytes))
	}
	if !utf8.ValidString(sql) {
		return errors.New(errors.CodeInvalidInput, "sql_code is not valid UTF-8")
	}
	if strings.IndexByte(sql, 0) >= 0 {
		return errors.New(errors.CodeInvalidInput, "sql_code contains NUL bytes")
	}
	return nil
}
