package widget

import (
	"strings"
	"sync"
)

// Field is an in-memory Input.
type Field struct {
	mu    sync.Mutex
	value string
}

func NewField(value string) *Field {
	return &Field{value: value}
}

func (f *Field) Value() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.value
}

func (f *Field) SetValue(value string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.value = value
}

// Transcript is an append-only Output. Lines are never reordered or removed.
type Transcript struct {
	mu       sync.RWMutex
	lines    []string
	onAppend func(line string)
}

func NewTranscript() *Transcript {
	return &Transcript{}
}

// OnAppend registers fn to run after every append, outside the lock.
func (t *Transcript) OnAppend(fn func(line string)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onAppend = fn
}

func (t *Transcript) Append(line string) {
	t.mu.Lock()
	t.lines = append(t.lines, line)
	fn := t.onAppend
	t.mu.Unlock()

	if fn != nil {
		fn(line)
	}
}

// Lines returns a copy of the transcript.
func (t *Transcript) Lines() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]string, len(t.lines))
	copy(out, t.lines)
	return out
}

func (t *Transcript) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.lines)
}

func (t *Transcript) String() string {
	return strings.Join(t.Lines(), "\n")
}
