package issues

import "sync"

// Ledger is a thread-safe, insertion-ordered collection of detected issues.
// Entries are never updated in place; DrainAll is the only removal path.
type Ledger struct {
	mu     sync.Mutex
	issues []Issue
}

// NewLedger creates an empty Ledger.
func NewLedger() *Ledger {
	return &Ledger{}
}

// Add appends one issue.
func (l *Ledger) Add(issue Issue) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.issues = append(l.issues, issue)
}

// AddAll appends issues in order.
func (l *Ledger) AddAll(issues []Issue) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.issues = append(l.issues, issues...)
}

// DrainAll atomically snapshots and clears the ledger. A drain immediately
// following a drain returns an empty slice.
func (l *Ledger) DrainAll() []Issue {
	l.mu.Lock()
	defer l.mu.Unlock()
	drained := l.issues
	l.issues = nil
	return drained
}

// Len reports the number of undrained issues.
func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.issues)
}
