package metrics

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/google/uuid"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Ledger is a Collector that keeps every record in memory, grouped by turn
// in arrival order. It backs the usage summary printed at shutdown and the
// per-turn lookups in tests.
type Ledger struct {
	mu          sync.Mutex
	byTurn      *orderedmap.OrderedMap[uuid.UUID, []Record]
	prompt      int64
	completion  int64
	calls       int
	unavailable int
}

func NewLedger() *Ledger {
	return &Ledger{
		byTurn: orderedmap.New[uuid.UUID, []Record](),
	}
}

func (l *Ledger) Collect(_ context.Context, rec Record) {
	l.mu.Lock()
	defer l.mu.Unlock()

	records, _ := l.byTurn.Get(rec.TurnID)
	l.byTurn.Set(rec.TurnID, append(records, rec))

	l.calls++
	if rec.Unavailable {
		l.unavailable++
		return
	}
	l.prompt += rec.PromptTokens
	l.completion += rec.CompletionTokens
}

// Records returns every collected record, oldest turn first.
func (l *Ledger) Records() []Record {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]Record, 0, l.calls)
	for pair := l.byTurn.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, pair.Value...)
	}
	return out
}

// TurnRecords returns the records of a single turn in arrival order.
func (l *Ledger) TurnRecords(turnID uuid.UUID) []Record {
	l.mu.Lock()
	defer l.mu.Unlock()

	records, _ := l.byTurn.Get(turnID)
	return slices.Clone(records)
}

// Totals reports the accumulated token counts across all available records.
func (l *Ledger) Totals() (prompt, completion, total int64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.prompt, l.completion, l.prompt + l.completion
}

// Len is the number of collected records.
func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.calls
}

// Summary renders a one-line usage report.
func (l *Ledger) Summary() string {
	l.mu.Lock()
	defer l.mu.Unlock()

	s := fmt.Sprintf("%d calls, %d prompt + %d completion = %d tokens",
		l.calls, l.prompt, l.completion, l.prompt+l.completion)
	if l.unavailable > 0 {
		s += fmt.Sprintf(" (%d unavailable)", l.unavailable)
	}
	return s
}
