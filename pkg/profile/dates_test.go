package profile

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"2020-01-15", "2020-01-15"},
		{"2020-01", "2020-01-01"},
		{"01/2020", "2020-01-01"},
		{"Jan 2020", "2020-01-01"},
		{"January 2020", "2020-01-01"},
		{"2019", "2019-01-01"},
		{" 2021-06 ", "2021-06-01"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := ParseDate(tt.in)
			require.NotNil(t, got)
			assert.Equal(t, tt.want, got.Format("2006-01-02"))
			assert.Equal(t, time.UTC, got.Location())
		})
	}
}

func TestParseDate_Unparseable(t *testing.T) {
	assert.Nil(t, ParseDate(""))
	assert.Nil(t, ParseDate("Present"))
	assert.Nil(t, ParseDate("sometime last spring"))
}

func TestExperienceRecord_Dates(t *testing.T) {
	start, end, current := ExperienceRecord{StartDate: "2020-01", EndDate: "Present"}.Dates()
	require.NotNil(t, start)
	assert.Nil(t, end)
	assert.True(t, current)

	start, end, current = ExperienceRecord{StartDate: "2018-03", EndDate: "2020-02"}.Dates()
	require.NotNil(t, start)
	require.NotNil(t, end)
	assert.False(t, current)
	assert.Equal(t, "2020-02-01", end.Format("2006-01-02"))

	_, end, current = ExperienceRecord{StartDate: "2018", EndDate: ""}.Dates()
	assert.Nil(t, end)
	assert.True(t, current)
}
