package validation

import (
	"strings"
	"testing"

	"yatube/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleForm struct {
	Text     string `form:"text" validate:"required,max=10"`
	Username string `json:"username" validate:"username"`
	Slug     string `validate:"omitempty,groupslug"`
}

func TestStruct_FieldMessages(t *testing.T) {
	t.Parallel()

	err := Struct(sampleForm{Text: "", Username: "ok_name"})
	require.Error(t, err)

	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, models.CodeValidation, appErr.Code)
	assert.Equal(t, map[string]string{"text": "This field is required."}, appErr.Fields)
}

func TestStruct_CustomTags(t *testing.T) {
	t.Parallel()

	err := Struct(sampleForm{Text: strings.Repeat("x", 11), Username: "-bad", Slug: "Not A Slug"})
	require.Error(t, err)

	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Contains(t, appErr.Fields["text"], "at most 10")
	assert.Contains(t, appErr.Fields["username"], "cannot start or end")
	assert.Contains(t, appErr.Fields["Slug"], "lowercase")
}

func TestStruct_Valid(t *testing.T) {
	t.Parallel()
	assert.NoError(t, Struct(sampleForm{Text: "hello", Username: "alice"}))
}

func TestValidateGroupSlug(t *testing.T) {
	t.Parallel()
	tests := []struct {
		slug    string
		wantErr bool
	}{
		{"test-slug", false},
		{"cats", false},
		{"a", false},
		{"Cats", true},
		{"-cats", true},
		{"cats-", true},
		{"has space", true},
		{"profile", true},
		{strings.Repeat("a", 51), true},
	}
	for _, tt := range tests {
		t.Run(tt.slug, func(t *testing.T) {
			err := ValidateGroupSlug(tt.slug)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
