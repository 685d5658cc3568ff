package imitation

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	gormsqlite "github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(gormsqlite.Open(dsn), &gorm.Config{Logger: logger.Discard})
	require.NoError(t, err, "open sqlite")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(Models()...), "automigrate")
	return db
}

// openFileTestDB opens a WAL-mode SQLite file shared by up to conns
// connections.
func openFileTestDB(t *testing.T, conns int) *gorm.DB {
	t.Helper()
	dsn := "file:" + filepath.Join(t.TempDir(), "imitator.db") +
		"?_pragma=busy_timeout(10000)&_pragma=journal_mode(WAL)"
	db, err := gorm.Open(gormsqlite.Open(dsn), &gorm.Config{Logger: logger.Discard})
	require.NoError(t, err, "open sqlite")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(conns)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(Models()...), "automigrate")
	return db
}

func edgesOf(t *testing.T, svc *Service, name string) map[[2]string]int64 {
	t.Helper()
	ctx := context.Background()
	id, err := svc.Users().Lookup(ctx, name)
	require.NoError(t, err)
	rows, err := svc.Transitions().Edges(ctx, id)
	require.NoError(t, err)
	out := make(map[[2]string]int64, len(rows))
	for _, r := range rows {
		out[[2]string{r.WordFrom, r.WordTo}] = r.Count
	}
	return out
}

type memoryCache struct {
	mu   sync.Mutex
	ids  map[string]uint32
	gets int
	sets int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{ids: make(map[string]uint32)}
}

func (c *memoryCache) GetUserID(_ context.Context, name string) (uint32, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	id, ok := c.ids[name]
	return id, ok, nil
}

func (c *memoryCache) SetUserID(_ context.Context, name string, id uint32) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sets++
	c.ids[name] = id
	return nil
}

// fixedRand always draws the same value, clamped to the requested range.
type fixedRand struct {
	u32 uint32
	n   int64
}

func (f fixedRand) Uint32() uint32 { return f.u32 }

func (f fixedRand) Int64N(n int64) int64 {
	if f.n >= n {
		return n - 1
	}
	return f.n
}
