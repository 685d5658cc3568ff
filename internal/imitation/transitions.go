package imitation

import (
	"context"
	"sort"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Successor is a candidate next word together with its recorded weight.
type Successor struct {
	Word  Word
	Count int64
}

type edgeKey struct {
	from, to string
}

// TransitionTable stores per-user weighted word transitions.
type TransitionTable struct {
	db *gorm.DB
}

func NewTransitionTable(db *gorm.DB) *TransitionTable {
	return &TransitionTable{db: db}
}

func (t *TransitionTable) withDB(db *gorm.DB) *TransitionTable {
	return &TransitionTable{db: db}
}

// RecordSequence adds one occurrence of every consecutive pair of
// Start, tokens..., End to ownerID's graph.
func (t *TransitionTable) RecordSequence(ctx context.Context, ownerID uint32, tokens []string) error {
	words := make([]Word, 0, len(tokens)+2)
	words = append(words, Start)
	for _, tok := range tokens {
		words = append(words, Token(tok))
	}
	words = append(words, End)

	counts := make(map[edgeKey]int64, len(words))
	for i := 1; i < len(words); i++ {
		from, err := encodeFrom(words[i-1])
		if err != nil {
			return err
		}
		to, err := encodeTo(words[i])
		if err != nil {
			return err
		}
		counts[edgeKey{from, to}]++
	}

	// a fixed key order keeps concurrent writers from deadlocking each other
	keys := make([]edgeKey, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].from != keys[j].from {
			return keys[i].from < keys[j].from
		}
		return keys[i].to < keys[j].to
	})

	err := t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, k := range keys {
			n := counts[k]
			if err := tx.Clauses(clause.OnConflict{
				Columns: []clause.Column{{Name: "user_id"}, {Name: "word_from"}, {Name: "word_to"}},
				DoUpdates: clause.Assignments(map[string]any{
					"occurrences": gorm.Expr("occurrences + ?", n),
				}),
			}).Create(&Transition{
				UserID:   ownerID,
				WordFrom: k.from,
				WordTo:   k.to,
				Count:    n,
			}).Error; err != nil {
				return err
			}
		}
		return nil
	})
	return storageErr("record transitions", err)
}

// SampleSuccessors returns at most limit outgoing edges of from, picked by the
// backend's random ordering. Callers see a sample, not the full successor set.
func (t *TransitionTable) SampleSuccessors(ctx context.Context, ownerID uint32, from Word, limit int) ([]Successor, error) {
	fromCol, err := encodeFrom(from)
	if err != nil {
		return nil, err
	}

	var rows []Transition
	if err := t.db.WithContext(ctx).
		Select("word_to", "occurrences").
		Where("user_id = ? AND word_from = ?", ownerID, fromCol).
		Order(randomOrder(t.db)).
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, storageErr("sample successors", err)
	}

	out := make([]Successor, 0, len(rows))
	for _, r := range rows {
		out = append(out, Successor{Word: decodeTo(r.WordTo), Count: r.Count})
	}
	return out, nil
}

// Edges returns ownerID's full graph keyed by (from, to) column values.
func (t *TransitionTable) Edges(ctx context.Context, ownerID uint32) ([]Transition, error) {
	var rows []Transition
	if err := t.db.WithContext(ctx).
		Where("user_id = ?", ownerID).
		Order("word_from, word_to").
		Find(&rows).Error; err != nil {
		return nil, storageErr("list transitions", err)
	}
	return rows, nil
}
