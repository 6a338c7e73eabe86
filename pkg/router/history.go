package router

// Mode selects how a hash write reaches the browser history.
type Mode int

const (
	// ModePush adds a new history entry.
	ModePush Mode = iota

	// ModeReplace rewrites the current entry without adding one.
	ModeReplace
)

// String returns "push" or "replace".
func (m Mode) String() string {
	if m == ModeReplace {
		return "replace"
	}
	return "push"
}

// History receives the router's hash writes.
type History interface {
	Push(hash string)
	Replace(hash string)
}

// nopHistory discards writes.
type nopHistory struct{}

func (nopHistory) Push(string)    {}
func (nopHistory) Replace(string) {}

// MemoryHistory is an in-memory browser history stack. Push truncates any
// forward entries, like the browser does.
type MemoryHistory struct {
	entries []string
	index   int
}

// NewMemoryHistory creates a history whose only entry is initial.
func NewMemoryHistory(initial string) *MemoryHistory {
	return &MemoryHistory{entries: []string{initial}}
}

// Push implements History.
func (h *MemoryHistory) Push(hash string) {
	h.entries = append(h.entries[:h.index+1], hash)
	h.index++
}

// Replace implements History.
func (h *MemoryHistory) Replace(hash string) {
	h.entries[h.index] = hash
}

// Current returns the hash of the current entry.
func (h *MemoryHistory) Current() string {
	return h.entries[h.index]
}

// Len returns the number of entries.
func (h *MemoryHistory) Len() int {
	return len(h.entries)
}

// Back moves one entry back and returns its hash.
// ok is false when there is no previous entry.
func (h *MemoryHistory) Back() (hash string, ok bool) {
	if h.index == 0 {
		return h.entries[0], false
	}
	h.index--
	return h.entries[h.index], true
}

// Forward moves one entry forward and returns its hash.
func (h *MemoryHistory) Forward() (hash string, ok bool) {
	if h.index == len(h.entries)-1 {
		return h.entries[h.index], false
	}
	h.index++
	return h.entries[h.index], true
}

// Entries returns a copy of all entries.
func (h *MemoryHistory) Entries() []string {
	return append([]string(nil), h.entries...)
}
