// Copyright (c) 2026 Asharvi. All rights reserved.
// Author: admin-platform@asharvi.dev

package validate_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asharvi/admin-core/internal/platform/apperr"
	"github.com/asharvi/admin-core/internal/platform/validate"
)

/*
TestValidator_Required tests the mandatory field validation logic.
*/
func TestValidator_Required(t *testing.T) {
	tests := []struct {
		name     string
		field    string
		value    string
		hasError bool
	}{
		{"valid_string", "title", "Intro to Go", false},
		{"empty_string", "title", "", true},
		{"whitespace_only", "title", "   ", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &validate.Validator{}
			v.Required(tt.field, tt.value)

			if tt.hasError {
				assert.True(t, v.HasErrors())
				err := v.Err()
				require.NotNil(t, err)

				var ve *apperr.ValidationError
				require.True(t, errors.As(err, &ve))
				require.NotEmpty(t, ve.Details)
				assert.Equal(t, tt.field, ve.Details[0].Field)
			} else {
				assert.False(t, v.HasErrors())
				assert.Nil(t, v.Err())
			}
		})
	}
}

/*
TestValidator_Slug checks the slug format validation rule.
*/
func TestValidator_Slug(t *testing.T) {
	tests := []struct {
		name    string
		slug    string
		isValid bool
	}{
		{"simple", "intro-to-go", true},
		{"digits", "go-101", true},
		{"uppercase", "Intro-To-Go", false},
		{"leading_hyphen", "-intro", false},
		{"trailing_hyphen", "intro-", false},
		{"spaces", "intro to go", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &validate.Validator{}
			v.Slug("slug", tt.slug)
			assert.Equal(t, !tt.isValid, v.HasErrors())
		})
	}
}

/*
TestValidator_HTTPURL checks the absolute-URL validation rule.
*/
func TestValidator_HTTPURL(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		isValid bool
	}{
		{"https", "https://cdn.asharvi.dev/v/intro.mp4", true},
		{"http", "http://localhost:8081/v/intro.mp4", true},
		{"empty_passes", "", true},
		{"relative", "/v/intro.mp4", false},
		{"wrong_scheme", "ftp://cdn.asharvi.dev/v/intro.mp4", false},
		{"no_host", "https://", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &validate.Validator{}
			v.HTTPURL("content", tt.value)
			assert.Equal(t, !tt.isValid, v.HasErrors())
		})
	}
}

/*
TestValidator_Chaining verifies that a chain collects every failure, in order.
*/
func TestValidator_Chaining(t *testing.T) {
	v := &validate.Validator{}
	err := v.
		Required("title", "").
		Slug("slug", "Not A Slug").
		OneOf("status", "live", "draft", "published", "archived").
		Err()

	require.NotNil(t, err)

	var ve *apperr.ValidationError
	require.True(t, errors.As(err, &ve))
	require.Len(t, ve.Details, 3)
	assert.Equal(t, "title", ve.Details[0].Field)
	assert.Equal(t, "slug", ve.Details[1].Field)
	assert.Equal(t, "status", ve.Details[2].Field)
}

/*
TestValidator_MaxLen verifies that length limits count runes, not bytes.
*/
func TestValidator_MaxLen(t *testing.T) {
	v := &validate.Validator{}
	v.MaxLen("title", "héllo", 5)
	assert.False(t, v.HasErrors())

	v.MaxLen("title", "héllo!", 5)
	assert.True(t, v.HasErrors())
}
