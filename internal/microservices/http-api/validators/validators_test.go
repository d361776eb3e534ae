package validators

import (
	"errors"
	"testing"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reviewhub/internal/microservices/http-api/apperr"
)

func TestValidateUsername(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
		contain string
	}{
		{name: "plain", input: "alice"},
		{name: "allowed symbols", input: "a.b@c+d-e_f"},
		{name: "reserved", input: "me", wantErr: true, contain: "reserved"},
		{name: "space", input: "bad name", wantErr: true, contain: `" "`},
		{name: "every offender listed", input: "a!b!c#", wantErr: true, contain: `"!!#"`},
		{name: "cyrillic letters", input: "Иван_1"},
		{name: "accented letters", input: "José.Ñúñez"},
		{name: "emoji rejected", input: "ivan🙂", wantErr: true, contain: `"🙂"`},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ValidateUsername(tt.input)
			if !tt.wantErr {
				require.NoError(t, err)
				assert.Equal(t, tt.input, got)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidUsername))
			assert.True(t, errors.Is(err, apperr.ErrValidation))
			assert.Contains(t, err.Error(), tt.contain)
		})
	}
}

func TestValidateUsername_MeIsCaseSensitive(t *testing.T) {
	got, err := ValidateUsername("Me")
	require.NoError(t, err)
	assert.Equal(t, "Me", got)
}

func TestSetUsernamePattern(t *testing.T) {
	t.Cleanup(func() {
		require.NoError(t, SetUsernamePattern(DefaultUsernamePattern))
	})

	require.NoError(t, SetUsernamePattern(`^[a-z]+$`))
	_, err := ValidateUsername("alice1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"1"`)

	assert.Error(t, SetUsernamePattern(`([`))
}

func TestValidateYearAt(t *testing.T) {
	now := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)

	assert.NoError(t, ValidateYearAt(2026, now))
	assert.NoError(t, ValidateYearAt(1895, now))

	err := ValidateYearAt(2027, now)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidYear))
	assert.True(t, errors.Is(err, apperr.ErrValidation))
}

func TestValidateYear_NextYearRejected(t *testing.T) {
	assert.Error(t, ValidateYear(time.Now().Year()+1))
	assert.NoError(t, ValidateYear(time.Now().Year()))
}

func TestRules(t *testing.T) {
	assert.NoError(t, validation.Validate("bob", UsernameRule))
	assert.Error(t, validation.Validate("me", UsernameRule))

	var missing *string
	assert.NoError(t, validation.Validate(missing, UsernameRule))

	future := time.Now().Year() + 5
	assert.Error(t, validation.Validate(future, YearRule))
	assert.Error(t, validation.Validate(&future, YearRule))
	assert.NoError(t, validation.Validate(1999, YearRule))
}
