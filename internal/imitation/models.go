package imitation

import "time"

type User struct {
	Name      string    `gorm:"primaryKey;type:varchar(191)" json:"user_name"`
	UserID    uint32    `gorm:"index;not null" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

func (User) TableName() string { return "user_names" }

type Message struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	Digest    []byte    `gorm:"size:16;uniqueIndex;not null" json:"-"`
	UserID    uint32    `gorm:"index;not null" json:"user_id"`
	Text      string    `gorm:"column:message;type:text;not null" json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

func (Message) TableName() string { return "user_messages" }

// Transition is one weighted edge of a user's word graph. Empty WordFrom is
// the start sentinel and empty WordTo the end sentinel.
type Transition struct {
	UserID   uint32 `gorm:"primaryKey;autoIncrement:false"`
	WordFrom string `gorm:"primaryKey;type:varchar(191)"`
	WordTo   string `gorm:"primaryKey;type:varchar(191)"`
	Count    int64  `gorm:"column:occurrences;not null;default:1"`
}

func (Transition) TableName() string { return "sequential_words" }

// Models lists every table the engine needs, for AutoMigrate.
func Models() []any {
	return []any{&User{}, &Message{}, &Transition{}}
}
