package core

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimestamp_NormalisesToUTC(t *testing.T) {
	zone := time.FixedZone("UTC+2", 2*60*60)
	ts := NewTimestamp(time.Date(2024, 5, 1, 14, 0, 0, 0, zone))

	assert.Equal(t, time.UTC, ts.Time().Location())
	assert.Equal(t, "2024-05-01T12:00:00Z", ts.String())
	assert.False(t, ts.IsZero())
	assert.True(t, Timestamp{}.IsZero())
}

func TestTimestamp_JSON(t *testing.T) {
	ts := NewTimestamp(time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC))

	data, err := json.Marshal(ts)
	require.NoError(t, err)
	assert.JSONEq(t, `"2024-05-01T12:30:00Z"`, string(data))

	var decoded Timestamp
	require.NoError(t, json.Unmarshal([]byte(`"2024-05-01T14:30:00+02:00"`), &decoded))
	assert.True(t, ts.Time().Equal(decoded.Time()))
	assert.Equal(t, time.UTC, decoded.Time().Location())
}
