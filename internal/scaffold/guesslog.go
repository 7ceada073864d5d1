package scaffold

import (
	"log"
	"strings"
	"sync"

	"github.com/louisbranch/restpanel/internal/guesser"
)

// GuessLog logs guessed list definitions once per distinct column set.
type GuessLog struct {
	mu     sync.Mutex
	seen   map[string]struct{}
	logf   func(format string, args ...any)
	maxLen int
}

const defaultGuessLogSize = 256

// NewGuessLog returns a GuessLog writing through logf, or log.Printf when nil.
func NewGuessLog(logf func(format string, args ...any)) *GuessLog {
	if logf == nil {
		logf = log.Printf
	}
	return &GuessLog{
		seen:   make(map[string]struct{}),
		logf:   logf,
		maxLen: defaultGuessLogSize,
	}
}

// Record logs the definition unless the same columns were already logged for
// resource. It reports whether a line was written.
func (l *GuessLog) Record(resource string, columns []guesser.Column) bool {
	if l == nil {
		return false
	}
	key := signature(resource, columns)

	l.mu.Lock()
	if _, ok := l.seen[key]; ok {
		l.mu.Unlock()
		return false
	}
	if len(l.seen) >= l.maxLen {
		clear(l.seen)
	}
	l.seen[key] = struct{}{}
	l.mu.Unlock()

	l.logf("%s", guesser.Definition(resource, columns))
	return true
}

func signature(resource string, columns []guesser.Column) string {
	var b strings.Builder
	b.WriteString(resource)
	for _, col := range columns {
		b.WriteByte('|')
		b.WriteString(col.Source)
		b.WriteByte(':')
		b.WriteString(string(col.Kind))
	}
	return b.String()
}
