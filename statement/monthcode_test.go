package statement

import (
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMonthCode(t *testing.T) {
	tests := []struct {
		code  string
		year  int
		month time.Month
	}{
		{"ENE-24", 2024, time.January},
		{"FEB-24", 2024, time.February},
		{"ABR-23", 2023, time.April},
		{"AGO-25", 2025, time.August},
		{"SEP-00", 2000, time.September},
		{"DIC-23", 2023, time.December},
		{"dic-23", 2023, time.December},
		{"Mar-24", 2024, time.March},
		{"NOV-68", 2068, time.November},
		{"NOV-69", 1969, time.November},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			ym, err := ParseMonthCode(tt.code)
			require.NoError(t, err)
			assert.Equal(t, YearMonth{Year: tt.year, Month: tt.month}, ym)
		})
	}
}

func TestParseMonthCode_Errors(t *testing.T) {
	tests := []struct {
		code string
		want error
	}{
		{"JAN-24", ErrUnknownMonth},
		{"SET-24", ErrUnknownMonth},
		{"ENERO-24", ErrUnknownMonth},
		{"ENE24", ErrMalformedMonthCode},
		{"ENE-2024", ErrMalformedMonthCode},
		{"ENE-2", ErrMalformedMonthCode},
		{"ENE-+1", ErrMalformedMonthCode},
		{"", ErrMalformedMonthCode},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			_, err := ParseMonthCode(tt.code)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)

			var mcErr *MonthCodeError
			require.ErrorAs(t, err, &mcErr)
			assert.Equal(t, tt.code, mcErr.Code)
		})
	}
}

func TestCompareMonthCodes_AcrossYearBoundary(t *testing.T) {
	codes := []MonthCode{"FEB-24", "ENE-24", "DIC-23", "Mar-24", "NOV-23"}

	slices.SortFunc(codes, CompareMonthCodes)

	assert.Equal(t, []MonthCode{"NOV-23", "DIC-23", "ENE-24", "FEB-24", "Mar-24"}, codes)
}

func TestCompareMonthCodes_UnresolvableLast(t *testing.T) {
	codes := []MonthCode{"XYZ-24", "FEB-24", "ABC", "ENE-24"}

	slices.SortFunc(codes, CompareMonthCodes)

	assert.Equal(t, []MonthCode{"ENE-24", "FEB-24", "ABC", "XYZ-24"}, codes)
}

func TestCompareMonthCodes_SameMonthDifferentCase(t *testing.T) {
	assert.Equal(t, -1, CompareMonthCodes("FEB-24", "Feb-24"))
	assert.Equal(t, 0, CompareMonthCodes("Feb-24", "Feb-24"))
	assert.Equal(t, -1, CompareMonthCodes("DIC-23", "ABR-24"))
}

func TestMonthCode_Capitalize(t *testing.T) {
	assert.Equal(t, MonthCode("Feb-24"), MonthCode("FEB-24").Capitalize())
	assert.Equal(t, MonthCode("Feb-24"), MonthCode("feb-24").Capitalize())
	assert.Equal(t, MonthCode(""), MonthCode("").Capitalize())
}

func TestYearMonth_Compare(t *testing.T) {
	dic23 := YearMonth{Year: 2023, Month: time.December}
	ene24 := YearMonth{Year: 2024, Month: time.January}

	assert.True(t, dic23.Before(ene24))
	assert.True(t, ene24.After(dic23))
	assert.Equal(t, 0, ene24.Compare(ene24))
	assert.Equal(t, "2023-12", dic23.String())
}
