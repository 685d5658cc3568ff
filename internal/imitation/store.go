package imitation

import (
	"context"

	"golang.org/x/crypto/blake2b"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const digestSize = 16

type Outcome int

const (
	Stored Outcome = iota + 1
	Duplicate
)

func (o Outcome) String() string {
	switch o {
	case Stored:
		return "stored"
	case Duplicate:
		return "duplicate"
	default:
		return "unknown"
	}
}

// Digest is the global deduplication key of a message text.
func Digest(text string) []byte {
	h, err := blake2b.New(digestSize, nil)
	if err != nil {
		// only reachable with an invalid size or key
		panic(err)
	}
	h.Write([]byte(text))
	return h.Sum(nil)
}

// MessageStore keeps every distinct message text exactly once, system-wide.
type MessageStore struct {
	db *gorm.DB
}

func NewMessageStore(db *gorm.DB) *MessageStore {
	return &MessageStore{db: db}
}

func (s *MessageStore) withDB(db *gorm.DB) *MessageStore {
	return &MessageStore{db: db}
}

// TryStore persists text for ownerID unless a message with the same digest
// already exists. The unique digest index makes the check and the insert a
// single conditional write.
func (s *MessageStore) TryStore(ctx context.Context, ownerID uint32, text string) (Outcome, error) {
	res := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&Message{Digest: Digest(text), UserID: ownerID, Text: text})
	if res.Error != nil {
		return 0, storageErr("insert message", res.Error)
	}
	if res.RowsAffected == 0 {
		return Duplicate, nil
	}
	return Stored, nil
}

// Count returns how many distinct messages ownerID has contributed.
func (s *MessageStore) Count(ctx context.Context, ownerID uint32) (int64, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&Message{}).
		Where("user_id = ?", ownerID).
		Count(&n).Error; err != nil {
		return 0, storageErr("count messages", err)
	}
	return n, nil
}
