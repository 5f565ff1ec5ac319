package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateOnlyJSONRoundTrip(t *testing.T) {
	d := NewDateOnly(time.Date(2004, 5, 17, 13, 45, 0, 0, time.UTC))

	raw, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Equal(t, `"2004-05-17"`, string(raw))

	var parsed DateOnly
	require.NoError(t, json.Unmarshal(raw, &parsed))
	assert.True(t, parsed.Equal(d.Time))
}

func TestDateOnlyUnmarshalRejectsOtherFormats(t *testing.T) {
	var d DateOnly
	assert.Error(t, json.Unmarshal([]byte(`"17-05-2004"`), &d))
	assert.Error(t, json.Unmarshal([]byte(`"2004/05/17"`), &d))
}

func TestDateOnlyScan(t *testing.T) {
	var d DateOnly
	require.NoError(t, d.Scan(time.Date(2004, 5, 17, 22, 0, 0, 0, time.UTC)))
	assert.Equal(t, "2004-05-17", d.Format(DateFormat))

	require.NoError(t, d.Scan("2010-01-02"))
	assert.Equal(t, "2010-01-02", d.Format(DateFormat))

	require.NoError(t, d.Scan([]byte("2011-03-04T00:00:00Z")))
	assert.Equal(t, "2011-03-04", d.Format(DateFormat))

	require.NoError(t, d.Scan(nil))
	assert.True(t, d.IsZero())

	assert.Error(t, d.Scan(42))
}
