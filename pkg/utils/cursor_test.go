package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"travel-booking-service/internal/domain/repository"
)

func TestCursorToken(t *testing.T) {
	c := &repository.Cursor{Values: []interface{}{"2025-01-01T00:00:00.000Z", 12.5}, ID: "doc-1"}

	token := EncodeCursor(c)
	assert.NotContains(t, token, "=")

	back, err := DecodeCursor(token)
	require.NoError(t, err)
	assert.Equal(t, c, back)

	none, err := DecodeCursor("")
	require.NoError(t, err)
	assert.Nil(t, none)
	assert.Equal(t, "", EncodeCursor(nil))

	_, err = DecodeCursor("%%%")
	assert.Error(t, err)
	_, err = DecodeCursor(EncodeCursor(&repository.Cursor{Values: []interface{}{}}))
	assert.Error(t, err)
}
