package validation_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/quillhq/quill-server/internal/errors"
	"github.com/quillhq/quill-server/internal/validation"
)

func TestValidatePositiveIntegers(t *testing.T) {
	tests := []struct {
		name    string
		values  []string
		want    []int64
		wantErr bool
	}{
		{"single", []string{"7"}, []int64{7}, false},
		{"many with spaces", []string{"1", " 5 ", "12"}, []int64{1, 5, 12}, false},
		{"zero is accepted", []string{"0"}, []int64{0}, false},
		{"duplicates kept", []string{"3", "3"}, []int64{3, 3}, false},
		{"empty sequence", nil, nil, true},
		{"negative", []string{"1", "-2"}, nil, true},
		{"not a number", []string{"abc"}, nil, true},
		{"fraction", []string{"1.5"}, nil, true},
		{"empty element", []string{"1", ""}, nil, true},
		{"overflow", []string{"99999999999999999999"}, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := validation.ValidatePositiveIntegers("authorIds", tt.values)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, domainerrors.ErrValidation)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseIDList(t *testing.T) {
	got, err := validation.ParseIDList("authorIds", "1,5")
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 5}, got)

	for _, raw := range []string{"", "  ", "1,,2", "1,x", "-1"} {
		_, err := validation.ParseIDList("authorIds", raw)
		assert.ErrorIs(t, err, domainerrors.ErrValidation, "raw=%q", raw)
	}

	_, err = validation.ParseIDList("authorIds", "")
	assert.EqualError(t, err, "must provide authorIds")
}

func TestValidateIDs(t *testing.T) {
	assert.NoError(t, validation.ValidateIDs("authorIds", []int64{0, 1, 2}))
	assert.ErrorIs(t, validation.ValidateIDs("authorIds", nil), domainerrors.ErrValidation)
	assert.ErrorIs(t, validation.ValidateIDs("authorIds", []int64{1, -1}), domainerrors.ErrValidation)
}

func TestValidateNonEmptyStrings(t *testing.T) {
	assert.NoError(t, validation.ValidateNonEmptyStrings("tags", []string{"a", "b"}))
	assert.ErrorIs(t, validation.ValidateNonEmptyStrings("tags", []string{}), domainerrors.ErrValidation)
	assert.ErrorIs(t, validation.ValidateNonEmptyStrings("tags", []string{"a", ""}), domainerrors.ErrValidation)
}

func TestValidateEnum(t *testing.T) {
	assert.NoError(t, validation.ValidateEnum("direction", "asc", "asc", "desc"))

	err := validation.ValidateEnum("direction", "ASC", "asc", "desc")
	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrValidation)
	assert.EqualError(t, err, "direction must be one of asc, desc")
}
