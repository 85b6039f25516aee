// EasyView - Engineering Model Publishing and Viewpoint Backend
// Copyright 2026 Technoborsch
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/technoborsch/easyview

// Package validation enforces closed-world request validation: every
// operation declares its fields as a struct with validate tags, request
// bodies are decoded with unknown fields rejected, and each declared field
// is checked by go-playground/validator. Anything outside the declared set
// fails with Invalid.
package validation

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"unicode"

	json "github.com/goccy/go-json"
	"github.com/go-playground/validator/v10"

	"github.com/technoborsch/easyview/internal/apperr"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// GetValidator returns the singleton validator instance. Thread-safe; the
// instance caches struct metadata across calls.
func GetValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())

		// username: 3-32 chars, lowercase letters, digits, hyphens,
		// underscores; must start with a letter.
		_ = validate.RegisterValidation("username", func(fl validator.FieldLevel) bool {
			return validUsername(fl.Field().String())
		})

		// quaternion: unit-ish quaternion, rejects the zero rotation.
		_ = validate.RegisterValidation("quaternion", func(fl validator.FieldLevel) bool {
			q, ok := fl.Field().Interface().([4]float64)
			if !ok {
				return false
			}
			var norm float64
			for _, c := range q {
				norm += c * c
			}
			return norm > 0
		})
	})
	return validate
}

func validUsername(s string) bool {
	if len(s) < 3 || len(s) > 32 {
		return false
	}
	for i, r := range s {
		switch {
		case unicode.IsLower(r), r == '_' && i > 0, r == '-' && i > 0:
		case unicode.IsDigit(r) && i > 0:
		default:
			return false
		}
	}
	return true
}

// ValidateStruct checks every declared field of s. Failures are collapsed
// into a single Invalid error listing the offending fields.
func ValidateStruct(s interface{}) error {
	err := GetValidator().Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return apperr.Wrap(apperr.KindInvalid, "invalid request", err)
	}

	messages := make([]string, len(fieldErrs))
	for i, fe := range fieldErrs {
		messages[i] = fmt.Sprintf("%s failed %s validation", fieldName(fe), fe.Tag())
	}
	return apperr.Invalid(strings.Join(messages, "; "))
}

func fieldName(fe validator.FieldError) string {
	// strip the struct name prefix from the namespace
	parts := strings.SplitN(fe.Namespace(), ".", 2)
	if len(parts) == 2 {
		return parts[1]
	}
	return fe.Field()
}

// DecodeJSON decodes a request body into the declared struct and validates
// it. Unknown fields are rejected: the declared set is the whole contract.
func DecodeJSON(r io.Reader, dst interface{}) error {
	decoder := json.NewDecoder(r)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dst); err != nil {
		return apperr.Wrap(apperr.KindInvalid, "malformed request body", err)
	}
	return ValidateStruct(dst)
}
