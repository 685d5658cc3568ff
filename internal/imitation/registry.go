package imitation

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// user ids stay within the non-negative 31-bit range
const maxUserID = 1<<31 - 1

// UserCache memoizes name -> id lookups. Ids never change once assigned, so
// entries never need invalidation.
type UserCache interface {
	GetUserID(ctx context.Context, name string) (id uint32, ok bool, err error)
	SetUserID(ctx context.Context, name string, id uint32) error
}

type Registry struct {
	db       *gorm.DB
	rng      Rand
	cache    UserCache
	observer Observer
}

func NewRegistry(db *gorm.DB, rng Rand) *Registry {
	if rng == nil {
		rng = globalRand{}
	}
	return &Registry{db: db, rng: rng, observer: nopObserver{}}
}

// GetOrCreate returns the id registered for name, assigning a random one on
// first sight. Concurrent first calls for the same name agree on one id.
func (r *Registry) GetOrCreate(ctx context.Context, name string) (uint32, error) {
	if id, ok := r.cached(ctx, name); ok {
		return id, nil
	}

	candidate := &User{Name: name, UserID: r.rng.Uint32() & maxUserID}
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(candidate).Error; err != nil {
		return 0, storageErr("insert user", err)
	}

	var u User
	if err := r.db.WithContext(ctx).
		Where("name = ?", name).
		Take(&u).Error; err != nil {
		return 0, storageErr("read user", err)
	}
	r.remember(ctx, name, u.UserID)
	return u.UserID, nil
}

// Lookup returns the id of an already registered user.
func (r *Registry) Lookup(ctx context.Context, name string) (uint32, error) {
	if id, ok := r.cached(ctx, name); ok {
		return id, nil
	}

	var u User
	err := r.db.WithContext(ctx).Where("name = ?", name).Take(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrUnknownUser
		}
		return 0, storageErr("lookup user", err)
	}
	r.remember(ctx, name, u.UserID)
	return u.UserID, nil
}

// PickRandom returns the name of an arbitrary registered user, using the
// backend's native random ordering.
func (r *Registry) PickRandom(ctx context.Context) (string, error) {
	var u User
	err := r.db.WithContext(ctx).Order(randomOrder(r.db)).Take(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrNoUsers
		}
		return "", storageErr("pick random user", err)
	}
	return u.Name, nil
}

// The cache is an accelerator only: on any cache failure the database stays
// the source of truth.
func (r *Registry) cached(ctx context.Context, name string) (uint32, bool) {
	if r.cache == nil {
		return 0, false
	}
	id, ok, err := r.cache.GetUserID(ctx, name)
	hit := err == nil && ok
	r.observer.UserCacheLookup(hit)
	return id, hit
}

func (r *Registry) remember(ctx context.Context, name string, id uint32) {
	if r.cache == nil {
		return
	}
	_ = r.cache.SetUserID(ctx, name, id)
}

func randomOrder(db *gorm.DB) string {
	if db.Dialector.Name() == "mysql" {
		return "RAND()"
	}
	return "RANDOM()"
}
