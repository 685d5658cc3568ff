package imitation

import (
	"math/rand/v2"
	"sync"
)

// Rand is the randomness the engine draws user ids and walk steps from.
// Implementations must be safe for concurrent use.
type Rand interface {
	Uint32() uint32
	Int64N(n int64) int64
}

type globalRand struct{}

func (globalRand) Uint32() uint32 { return rand.Uint32() }
func (globalRand) Int64N(n int64) int64 { return rand.Int64N(n) }

type lockedRand struct {
	mu sync.Mutex
	r  *rand.Rand
}

// NewSeededRand returns a deterministic Rand, mostly useful in tests.
func NewSeededRand(seed1, seed2 uint64) Rand {
	return &lockedRand{r: rand.New(rand.NewPCG(seed1, seed2))}
}

func (l *lockedRand) Uint32() uint32 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Uint32()
}

func (l *lockedRand) Int64N(n int64) int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Int64N(n)
}
