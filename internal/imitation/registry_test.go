package imitation

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_GetOrCreateIsStable(t *testing.T) {
	db := openTestDB(t)
	reg := NewRegistry(db, NewSeededRand(3, 4))
	ctx := context.Background()

	first, err := reg.GetOrCreate(ctx, "alice")
	require.NoError(t, err)
	second, err := reg.GetOrCreate(ctx, "alice")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.LessOrEqual(t, first, uint32(maxUserID))

	looked, err := reg.Lookup(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, first, looked)
}

func TestRegistry_IDIsThirtyOneBits(t *testing.T) {
	reg := NewRegistry(openTestDB(t), fixedRand{u32: 0xFFFFFFFF})
	id, err := reg.GetOrCreate(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, uint32(maxUserID), id)
}

func TestRegistry_ConcurrentFirstSight(t *testing.T) {
	reg := NewRegistry(openTestDB(t), nil)
	ctx := context.Background()

	const callers = 8
	ids := make([]uint32, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id, err := reg.GetOrCreate(ctx, "alice")
			assert.NoError(t, err)
			ids[i] = id
		}(i)
	}
	wg.Wait()

	for _, id := range ids[1:] {
		assert.Equal(t, ids[0], id)
	}
	var n int64
	require.NoError(t, reg.db.Model(&User{}).Count(&n).Error)
	assert.EqualValues(t, 1, n)
}

func TestRegistry_LookupUnknown(t *testing.T) {
	reg := NewRegistry(openTestDB(t), nil)
	_, err := reg.Lookup(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrUnknownUser)
}

func TestRegistry_PickRandomEmpty(t *testing.T) {
	reg := NewRegistry(openTestDB(t), nil)
	_, err := reg.PickRandom(context.Background())
	assert.ErrorIs(t, err, ErrNoUsers)
}

func TestRegistry_CacheIsFilledAndUsed(t *testing.T) {
	cache := newMemoryCache()
	svc := NewService(openTestDB(t), 0, 0, WithUserCache(cache))
	ctx := context.Background()

	id, err := svc.Users().GetOrCreate(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, id, cache.ids["alice"])

	require.NoError(t, svc.db.Where("name = ?", "alice").Delete(&User{}).Error)
	cached, err := svc.Users().Lookup(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, id, cached)
}
