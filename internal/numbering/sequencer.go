package numbering

import (
	"context"
	"sync"
	"time"

	"supercrm/internal/domain"
)

// Sequencer hands out the next sequence for a prefix and financial year.
// Implementations must never return the same value twice for one scope.
type Sequencer interface {
	NextSequence(ctx context.Context, prefix, financialYear string) (int, error)
}

type scope struct {
	prefix        string
	financialYear string
}

// MemorySequencer is a Sequencer for a single process that owns numbering.
type MemorySequencer struct {
	mu   sync.Mutex
	last map[scope]int
}

func NewMemorySequencer() *MemorySequencer {
	return &MemorySequencer{last: make(map[scope]int)}
}

// Seed raises the counters to cover already issued numbers. Malformed
// numbers are ignored.
func (m *MemorySequencer) Seed(existing []string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range existing {
		n, ok := Parse(s)
		if !ok {
			continue
		}
		k := scope{n.Prefix, n.FinancialYear}
		if n.Sequence > m.last[k] {
			m.last[k] = n.Sequence
		}
	}
}

func (m *MemorySequencer) NextSequence(ctx context.Context, prefix, financialYear string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	k := scope{prefix, financialYear}
	if m.last[k] >= MaxSequence {
		return 0, domain.ErrSequenceExhausted
	}
	m.last[k]++
	return m.last[k], nil
}

// Generator combines a Sequencer with a clock to issue formatted numbers.
type Generator struct {
	seq Sequencer
	now func() time.Time
}

func NewGenerator(seq Sequencer, now func() time.Time) *Generator {
	if now == nil {
		now = time.Now
	}
	return &Generator{seq: seq, now: now}
}

// Next issues the next number for prefix in the current financial year.
func (g *Generator) Next(ctx context.Context, prefix string) (Number, error) {
	fy := FinancialYear(g.now())
	seq, err := g.seq.NextSequence(ctx, prefix, fy)
	if err != nil {
		return Number{}, err
	}
	if seq > MaxSequence {
		return Number{}, domain.ErrSequenceExhausted
	}
	return Number{Prefix: prefix, FinancialYear: fy, Sequence: seq}, nil
}

// NextFor issues the next number for an invoice type.
func (g *Generator) NextFor(ctx context.Context, t domain.InvoiceType) (Number, error) {
	prefix, err := PrefixFor(t)
	if err != nil {
		return Number{}, err
	}
	return g.Next(ctx, prefix)
}
