package imitation

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

const (
	DefaultMaxTokens   = 100
	DefaultSampleLimit = 10

	ModeNamed  = "named"
	ModeRandom = "random"
)

type Service struct {
	db          *gorm.DB
	users       *Registry
	messages    *MessageStore
	transitions *TransitionTable
	rng         Rand
	observer    Observer
	maxTokens   int
	sampleLimit int
}

type Option func(*Service)

// WithRand replaces the process-wide random source.
func WithRand(rng Rand) Option {
	return func(s *Service) { s.rng = rng }
}

func WithUserCache(c UserCache) Option {
	return func(s *Service) { s.users.cache = c }
}

func WithObserver(o Observer) Option {
	return func(s *Service) {
		if o != nil {
			s.observer = o
		}
	}
}

func NewService(db *gorm.DB, maxTokens, sampleLimit int, opts ...Option) *Service {
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	if sampleLimit <= 0 {
		sampleLimit = DefaultSampleLimit
	}
	s := &Service{
		db:          db,
		users:       NewRegistry(db, nil),
		messages:    NewMessageStore(db),
		transitions: NewTransitionTable(db),
		rng:         globalRand{},
		observer:    nopObserver{},
		maxTokens:   maxTokens,
		sampleLimit: sampleLimit,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.users.rng = s.rng
	s.users.observer = s.observer
	return s
}

func (s *Service) Users() *Registry { return s.users }
func (s *Service) Messages() *MessageStore { return s.messages }
func (s *Service) Transitions() *TransitionTable { return s.transitions }

// Ingest attributes text to the named user. Text that was already seen, from
// any user, is absorbed without touching the transition table.
func (s *Service) Ingest(ctx context.Context, name, text string) error {
	userID, err := s.users.GetOrCreate(ctx, name)
	if err != nil {
		return err
	}

	var outcome Outcome
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		outcome, err = s.messages.withDB(tx).TryStore(ctx, userID, text)
		if err != nil || outcome != Stored {
			return err
		}
		return s.transitions.withDB(tx).RecordSequence(ctx, userID, Tokenize(text))
	})
	if err != nil {
		var se *StorageError
		if errors.As(err, &se) || errors.Is(err, ErrEmptyToken) {
			return err
		}
		return storageErr("ingest", err)
	}

	s.observer.MessageIngested(outcome == Stored)
	return nil
}

// Generate imitates the named user with a weighted random walk over their
// transition graph.
func (s *Service) Generate(ctx context.Context, name string) (string, error) {
	userID, err := s.users.Lookup(ctx, name)
	if err != nil {
		return "", err
	}
	tokens, err := s.walk(ctx, userID)
	if err != nil {
		return "", err
	}
	s.observer.ImitationGenerated(ModeNamed, len(tokens))
	return strings.Join(tokens, " "), nil
}

// GenerateForRandomUser picks any registered user and imitates them.
func (s *Service) GenerateForRandomUser(ctx context.Context) (name, text string, err error) {
	name, err = s.users.PickRandom(ctx)
	if err != nil {
		return "", "", err
	}
	userID, err := s.users.Lookup(ctx, name)
	if err != nil {
		if errors.Is(err, ErrUnknownUser) {
			return "", "", fmt.Errorf("%w: %q", ErrRandomUserUnavailable, name)
		}
		return "", "", err
	}
	tokens, err := s.walk(ctx, userID)
	if err != nil {
		return "", "", err
	}
	s.observer.ImitationGenerated(ModeRandom, len(tokens))
	return name, strings.Join(tokens, " "), nil
}

// walk follows sampled successors from Start until it reaches End, a word
// with no successors, or maxTokens tokens.
func (s *Service) walk(ctx context.Context, userID uint32) ([]string, error) {
	current := Start
	var out []string
	for step := 0; step < s.maxTokens; step++ {
		candidates, err := s.transitions.SampleSuccessors(ctx, userID, current, s.sampleLimit)
		if err != nil {
			return nil, err
		}
		if len(candidates) == 0 {
			break
		}
		next := pickWeighted(candidates, s.rng)
		if !next.IsToken() {
			break
		}
		out = append(out, next.Text())
		current = next
	}
	return out, nil
}

// pickWeighted does a cumulative-weight draw over candidates in the order
// given. candidates must be non-empty.
func pickWeighted(candidates []Successor, rng Rand) Word {
	var total int64
	for _, c := range candidates {
		total += c.Count
	}
	if total <= 0 {
		return candidates[0].Word
	}
	r := rng.Int64N(total)
	for _, c := range candidates {
		r -= c.Count
		if r < 0 {
			return c.Word
		}
	}
	return candidates[len(candidates)-1].Word
}
