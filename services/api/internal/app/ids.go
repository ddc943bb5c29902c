package app

import (
	"math"
	"sync"

	"github.com/stagepass/ticket-ledger/services/api/internal/domain"
)

// Sequence32 hands out catalog ids: strictly increasing, starting after the
// seed, never reused. Exhaustion is an error, not a wrap — a recycled id
// would corrupt ownership and index state. Safe for concurrent use; one
// sequence per id space is shared by all request handlers.
type Sequence32 struct {
	mu   sync.Mutex
	last uint32
}

// NewSequence32 seeds a sequence with the highest id already issued
// (zero for an empty ledger).
func NewSequence32(last uint32) *Sequence32 {
	return &Sequence32{last: last}
}

func (s *Sequence32) Next() (uint32, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.last == math.MaxUint32 {
		return 0, domain.ErrIDOverflow
	}
	s.last++
	return s.last, nil
}

// Sequence64 hands out ticket ids. Tickets get the wider space so the
// counter outlives the 32-bit catalog spaces.
type Sequence64 struct {
	mu   sync.Mutex
	last uint64
}

func NewSequence64(last uint64) *Sequence64 {
	return &Sequence64{last: last}
}

func (s *Sequence64) Next() (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.last == math.MaxUint64 {
		return 0, domain.ErrIDOverflow
	}
	s.last++
	return s.last, nil
}
