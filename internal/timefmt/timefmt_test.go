package timefmt

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize_Nil(t *testing.T) {
	got, err := Normalize(nil)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestNormalize_Time(t *testing.T) {
	now := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)
	got, err := Normalize(now)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, now, *got)
}

func TestNormalize_ZeroTime(t *testing.T) {
	got, err := Normalize(time.Time{})
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestNormalize_NilPointer(t *testing.T) {
	var tp *time.Time
	got, err := Normalize(tp)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestNormalize_RFC3339String(t *testing.T) {
	got, err := Normalize("2024-01-15T10:30:00Z")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC), got.UTC())
}

func TestNormalize_EmptyString(t *testing.T) {
	got, err := Normalize("")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestNormalize_EpochMillis(t *testing.T) {
	got, err := Normalize(int64(1705314600000))
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, time.UnixMilli(1705314600000), *got)
}

func TestNormalize_EpochMillisString(t *testing.T) {
	got, err := Normalize("1705314600000")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, time.UnixMilli(1705314600000), *got)
}

func TestNormalize_SecondsNanosObject(t *testing.T) {
	got, err := Normalize(map[string]any{
		"seconds":     float64(1705314600),
		"nanoseconds": float64(500),
	})
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, time.Unix(1705314600, 500), *got)
}

func TestNormalize_SecondsNanosMissingSeconds(t *testing.T) {
	_, err := Normalize(map[string]any{"nanoseconds": float64(500)})
	assert.Error(t, err)
}

func TestNormalize_Timer(t *testing.T) {
	ft := FlexTime{Time: time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)}
	got, err := Normalize(ft)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, ft.Time, *got)
}

func TestNormalize_UnknownType(t *testing.T) {
	_, err := Normalize(struct{}{})
	assert.Error(t, err)
}

func TestFlexTime_UnmarshalJSON_RFC3339(t *testing.T) {
	input := `"2024-01-15T10:30:00Z"`
	var ft FlexTime
	err := json.Unmarshal([]byte(input), &ft)
	require.NoError(t, err)

	expected := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)
	assert.Equal(t, expected, ft.Time)
}

func TestFlexTime_UnmarshalJSON_EpochMs_Number(t *testing.T) {
	// 2024-01-15T10:30:00Z in epoch milliseconds
	input := `1705314600000`
	var ft FlexTime
	err := json.Unmarshal([]byte(input), &ft)
	require.NoError(t, err)

	expected := time.UnixMilli(1705314600000)
	assert.Equal(t, expected, ft.Time)
}

func TestFlexTime_UnmarshalJSON_SecondsNanos(t *testing.T) {
	input := `{"seconds":1705314600,"nanoseconds":0}`
	var ft FlexTime
	err := json.Unmarshal([]byte(input), &ft)
	require.NoError(t, err)

	assert.Equal(t, time.Unix(1705314600, 0), ft.Time)
}

func TestFlexTime_MarshalJSON(t *testing.T) {
	ft := FlexTime{Time: time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)}
	data, err := json.Marshal(ft)
	require.NoError(t, err)

	assert.Equal(t, `"2024-01-15T10:30:00Z"`, string(data))
}

func TestFlexTime_InStruct(t *testing.T) {
	type TestStruct struct {
		CreatedAt FlexTime `json:"created_at"`
		UpdatedAt FlexTime `json:"updated_at"`
	}

	// Test with mixed formats, the way legacy documents arrive
	input := `{"created_at":"2024-01-15T10:30:00Z","updated_at":1705314600000}`
	var ts TestStruct
	err := json.Unmarshal([]byte(input), &ts)
	require.NoError(t, err)

	assert.Equal(t, time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC), ts.CreatedAt.Time)
	assert.Equal(t, time.UnixMilli(1705314600000), ts.UpdatedAt.Time)
}
