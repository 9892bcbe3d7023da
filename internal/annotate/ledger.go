package annotate

import "sync"

// Ledger counts lines inserted per file during one run, so block line
// numbers captured at load time can be shifted to the current text.
type Ledger struct {
	mu      sync.Mutex
	offsets map[string]int
}

func NewLedger() *Ledger {
	return &Ledger{offsets: make(map[string]int)}
}

// Offset returns the lines inserted so far into file.
func (l *Ledger) Offset(file string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.offsets[file]
}

// Add records n more inserted lines in file.
func (l *Ledger) Add(file string, n int) {
	l.mu.Lock()
	l.offsets[file] += n
	l.mu.Unlock()
}
