package validation

import (
	"slices"
	"strconv"
	"strings"

	domainerrors "github.com/quillhq/quill-server/internal/errors"
)

// ValidatePositiveIntegers parses every value as a non-negative integer.
// An empty sequence is rejected: a request naming zero ids is malformed.
func ValidatePositiveIntegers(field string, values []string) ([]int64, error) {
	if len(values) == 0 {
		return nil, domainerrors.Validationf("%s must not be empty", field)
	}
	ids := make([]int64, 0, len(values))
	for _, raw := range values {
		n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
		if err != nil || n < 0 {
			return nil, domainerrors.Validationf("%s must be positive numbers", field).
				WithDetails(map[string]string{field: raw})
		}
		ids = append(ids, n)
	}
	return ids, nil
}

// ValidateIDs checks already-typed ids with the same rules as ValidatePositiveIntegers.
func ValidateIDs(field string, ids []int64) error {
	if len(ids) == 0 {
		return domainerrors.Validationf("%s must not be empty", field)
	}
	for _, id := range ids {
		if id < 0 {
			return domainerrors.Validationf("%s must be positive numbers", field)
		}
	}
	return nil
}

// ParseIDList splits the comma separated transport form ("1,2,3") and validates it.
func ParseIDList(field, raw string) ([]int64, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, domainerrors.Validationf("must provide %s", field)
	}
	return ValidatePositiveIntegers(field, strings.Split(raw, ","))
}

// ValidateNonEmptyStrings requires at least one value and no empty values.
func ValidateNonEmptyStrings(field string, values []string) error {
	if len(values) == 0 {
		return domainerrors.Validationf("%s must not be empty", field)
	}
	for _, v := range values {
		if v == "" {
			return domainerrors.Validationf("%s must not contain empty values", field)
		}
	}
	return nil
}

// ValidateEnum requires value to be one of allowed.
func ValidateEnum(field, value string, allowed ...string) error {
	if slices.Contains(allowed, value) {
		return nil
	}
	return domainerrors.Validationf("%s must be one of %s", field, strings.Join(allowed, ", "))
}
