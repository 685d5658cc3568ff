package imitation

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDigest_FixedWidth(t *testing.T) {
	assert.Len(t, Digest(""), digestSize)
	assert.Len(t, Digest("a much longer message than sixteen bytes"), digestSize)
	assert.Equal(t, Digest("x"), Digest("x"))
	assert.NotEqual(t, Digest("x"), Digest("y"))
}

func TestMessageStore_TryStore(t *testing.T) {
	store := NewMessageStore(openTestDB(t))
	ctx := context.Background()

	out, err := store.TryStore(ctx, 1, "hello")
	require.NoError(t, err)
	assert.Equal(t, Stored, out)

	out, err = store.TryStore(ctx, 2, "hello")
	require.NoError(t, err)
	assert.Equal(t, Duplicate, out)

	out, err = store.TryStore(ctx, 2, "hello!")
	require.NoError(t, err)
	assert.Equal(t, Stored, out)

	n, err := store.Count(ctx, 1)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	n, err = store.Count(ctx, 2)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestMessageStore_KeepsTextVerbatim(t *testing.T) {
	db := openTestDB(t)
	store := NewMessageStore(db)
	text := "  spaced\tout  "
	_, err := store.TryStore(context.Background(), 9, text)
	require.NoError(t, err)

	var m Message
	require.NoError(t, db.Where("user_id = ?", 9).Take(&m).Error)
	assert.Equal(t, text, m.Text)
	assert.Equal(t, Digest(text), m.Digest)
}
