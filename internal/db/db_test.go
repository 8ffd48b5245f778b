package db

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNullableTime(t *testing.T) {
	assert.Nil(t, NullableTime(time.Time{}))

	ts := time.Date(2024, 2, 29, 18, 15, 0, 0, time.UTC)
	assert.Equal(t, ts, NullableTime(ts))
}

func TestNullableJSON(t *testing.T) {
	assert.Nil(t, NullableJSON(nil))
	assert.Nil(t, NullableJSON(json.RawMessage{}))
	assert.Equal(t, `{"nodes":[]}`, NullableJSON(json.RawMessage(`{"nodes":[]}`)))
}
