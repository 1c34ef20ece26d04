// Package undo records inverse operations for the in-memory repositories so
// a failed transaction is unwound in proportion to what it wrote.
package undo

// Log is a stack of inverse operations. The zero value is ready to use.
// Not safe for concurrent use.
type Log struct {
	ops []func()
}

// Push records op to run on Rollback.
func (l *Log) Push(op func()) {
	l.ops = append(l.ops, op)
}

// Rollback runs the recorded operations newest first and empties the log.
func (l *Log) Rollback() {
	for i := len(l.ops) - 1; i >= 0; i-- {
		l.ops[i]()
	}
	l.ops = nil
}

// Commit forgets the recorded operations.
func (l *Log) Commit() {
	l.ops = nil
}

// Len reports how many operations are pending.
func (l *Log) Len() int {
	return len(l.ops)
}

// Set assigns m[k] = v and records how to restore the previous entry.
func Set[K comparable, V any](l *Log, m map[K]V, k K, v V) {
	old, had := m[k]
	m[k] = v
	l.Push(func() {
		if had {
			m[k] = old
		} else {
			delete(m, k)
		}
	})
}

// Delete removes m[k] and records how to put it back. Missing keys are not
// logged.
func Delete[K comparable, V any](l *Log, m map[K]V, k K) {
	old, had := m[k]
	if !had {
		return
	}
	delete(m, k)
	l.Push(func() { m[k] = old })
}
