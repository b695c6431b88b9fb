package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateUsername(t *testing.T) {
	tests := []struct {
		name     string
		username string
		wantErr  bool
	}{
		{"simple", "alice", false},
		{"short", "bo", false},
		{"digits and symbols", "user_01-x", false},
		{"empty", "", true},
		{"space", "alice smith", false},
		{"accented", "josé", false},
		{"japanese", "たろう", false},
		{"whitespace only", "   ", true},
		{"too long", strings.Repeat("a", MaxUsernameLength+1), true},
		{"max length", strings.Repeat("a", MaxUsernameLength), false},
		{"max length multibyte", strings.Repeat("た", MaxUsernameLength), false},
		{"too long multibyte", strings.Repeat("た", MaxUsernameLength+1), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateUsername(tt.username)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidatePassword(t *testing.T) {
	assert.NoError(t, ValidatePassword("pw1"))
	assert.Error(t, ValidatePassword(""))
	assert.NoError(t, ValidatePassword(strings.Repeat("x", MaxPasswordBytes)))
	assert.Error(t, ValidatePassword(strings.Repeat("x", MaxPasswordBytes+1)))
}

func TestValidateBio(t *testing.T) {
	assert.NoError(t, ValidateBio(""))
	assert.NoError(t, ValidateBio(strings.Repeat("é", MaxBioLength)))
	assert.Error(t, ValidateBio(strings.Repeat("é", MaxBioLength+1)))
}

func TestNormalizeTweetContent(t *testing.T) {
	got, err := NormalizeTweetContent("  hi \n")
	assert.NoError(t, err)
	assert.Equal(t, "hi", got)

	_, err = NormalizeTweetContent("   ")
	assert.ErrorIs(t, err, ErrEmptyContent)

	_, err = NormalizeTweetContent("\t\n")
	assert.ErrorIs(t, err, ErrEmptyContent)

	long := strings.Repeat("ü", 5000)
	got, err = NormalizeTweetContent(long)
	assert.NoError(t, err)
	assert.Equal(t, long, got)
}
