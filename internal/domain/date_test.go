package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Date
		wantErr bool
	}{
		{"plain", "2025-01-10", NewDate(2025, time.January, 10), false},
		{"surrounding space", "  2025-02-28 ", NewDate(2025, time.February, 28), false},
		{"leap day", "2024-02-29", NewDate(2024, time.February, 29), false},
		{"impossible day", "2025-02-30", Date{}, true},
		{"not leap year", "2025-02-29", Date{}, true},
		{"single digit month", "2025-1-10", Date{}, true},
		{"slashes", "2025/01/10", Date{}, true},
		{"empty", "", Date{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDate(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %s want %s", got, tt.want)
		})
	}
}

func TestDate_ScanAcceptsDriverRepresentations(t *testing.T) {
	want := NewDate(2025, time.March, 5)

	var fromTime Date
	require.NoError(t, fromTime.Scan(time.Date(2025, time.March, 5, 0, 0, 0, 0, time.UTC)))
	assert.True(t, want.Equal(fromTime))

	var fromString Date
	require.NoError(t, fromString.Scan("2025-03-05"))
	assert.True(t, want.Equal(fromString))

	var fromBytes Date
	require.NoError(t, fromBytes.Scan([]byte("2025-03-05T00:00:00Z")))
	assert.True(t, want.Equal(fromBytes))

	var fromNil Date
	require.NoError(t, fromNil.Scan(nil))
	assert.True(t, fromNil.IsZero())

	var bad Date
	assert.Error(t, bad.Scan(42))
}

func TestDate_Value(t *testing.T) {
	v, err := NewDate(2025, time.January, 10).Value()
	require.NoError(t, err)
	assert.Equal(t, "2025-01-10", v)

	v, err = Date{}.Value()
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestDate_JSON(t *testing.T) {
	data, err := json.Marshal(struct {
		D Date `json:"d"`
	}{NewDate(2025, time.January, 10)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"d":"2025-01-10"}`, string(data))

	var decoded struct {
		D Date `json:"d"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"d":"2024-12-31"}`), &decoded))
	assert.Equal(t, "2024-12-31", decoded.D.String())

	assert.Error(t, json.Unmarshal([]byte(`{"d":"31/12/2024"}`), &decoded))
}
