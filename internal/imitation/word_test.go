package imitation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWordEncoding(t *testing.T) {
	from, err := encodeFrom(Start)
	require.NoError(t, err)
	assert.Equal(t, "", from)

	to, err := encodeTo(End)
	require.NoError(t, err)
	assert.Equal(t, "", to)

	_, err = encodeFrom(End)
	assert.ErrorIs(t, err, ErrSentinelPosition)
	_, err = encodeTo(Start)
	assert.ErrorIs(t, err, ErrSentinelPosition)

	_, err = encodeTo(Token(""))
	assert.ErrorIs(t, err, ErrEmptyToken)

	assert.True(t, decodeTo("").IsEnd())
	assert.Equal(t, "hi", decodeTo("hi").Text())
	assert.Equal(t, "", End.Text())
	assert.Equal(t, "<start>", Start.String())
}
