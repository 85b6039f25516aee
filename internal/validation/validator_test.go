// EasyView - Engineering Model Publishing and Viewpoint Backend
// Copyright 2026 Technoborsch
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/technoborsch/easyview

package validation

import (
	"strings"
	"testing"

	"github.com/technoborsch/easyview/internal/apperr"
)

type sampleRequest struct {
	Username string     `json:"username" validate:"required,username"`
	Email    string     `json:"email" validate:"required,email"`
	FOV      float64    `json:"fov" validate:"omitempty,gt=0,lte=180"`
	Rotation [4]float64 `json:"rotation" validate:"omitempty,quaternion"`
}

func TestValidateStruct(t *testing.T) {
	tests := []struct {
		name    string
		req     sampleRequest
		wantErr bool
	}{
		{"valid", sampleRequest{Username: "alice", Email: "alice@example.com"}, false},
		{"valid with optionals", sampleRequest{Username: "alice-2", Email: "a@b.co", FOV: 60, Rotation: [4]float64{0, 0, 0, 1}}, false},
		{"missing username", sampleRequest{Email: "alice@example.com"}, true},
		{"short username", sampleRequest{Username: "al", Email: "alice@example.com"}, true},
		{"uppercase username", sampleRequest{Username: "Alice", Email: "alice@example.com"}, true},
		{"leading digit username", sampleRequest{Username: "1alice", Email: "alice@example.com"}, true},
		{"bad email", sampleRequest{Username: "alice", Email: "not-an-email"}, true},
		{"fov out of range", sampleRequest{Username: "alice", Email: "a@b.co", FOV: 200}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStruct(&tt.req)
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !apperr.IsKind(err, apperr.KindInvalid) {
				t.Errorf("error kind = %v, want Invalid", apperr.KindOf(err))
			}
		})
	}
}

func TestDecodeJSONClosedWorld(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{"valid", `{"username":"alice","email":"alice@example.com"}`, false},
		{"undeclared field", `{"username":"alice","email":"alice@example.com","is_admin":true}`, true},
		{"malformed json", `{"username":`, true},
		{"valid fields failing rules", `{"username":"x","email":"alice@example.com"}`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req sampleRequest
			err := DecodeJSON(strings.NewReader(tt.body), &req)
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !apperr.IsKind(err, apperr.KindInvalid) {
				t.Errorf("error kind = %v, want Invalid", apperr.KindOf(err))
			}
		})
	}
}

func TestValidUsername(t *testing.T) {
	valid := []string{"alice", "bob_42", "pm-lead", "abc"}
	invalid := []string{"", "ab", "Alice", "_alice", "-alice", "9lives", "with space", strings.Repeat("a", 33)}

	for _, u := range valid {
		if !validUsername(u) {
			t.Errorf("validUsername(%q) = false, want true", u)
		}
	}
	for _, u := range invalid {
		if validUsername(u) {
			t.Errorf("validUsername(%q) = true, want false", u)
		}
	}
}
