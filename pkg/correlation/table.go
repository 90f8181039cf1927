package correlation

// StateTable holds the in-flight entity for each key. It is owned by a
// single Correlator and is not safe for concurrent use.
type StateTable[S any] struct {
	entries map[string]S
}

func NewStateTable[S any]() *StateTable[S] {
	return &StateTable[S]{
		entries: map[string]S{},
	}
}

// CreateIfAbsent inserts create() under key only when nothing is stored there.
// It returns the stored entry and whether it was created by this call.
func (t *StateTable[S]) CreateIfAbsent(key string, create func() S) (S, bool) {
	if existing, exists := t.entries[key]; exists {
		return existing, false
	}

	entry := create()
	t.entries[key] = entry

	return entry, true
}

func (t *StateTable[S]) Get(key string) (S, bool) {
	entry, exists := t.entries[key]
	return entry, exists
}

// Put stores entry under key and reports whether an older entry was replaced
func (t *StateTable[S]) Put(key string, entry S) bool {
	_, exists := t.entries[key]
	t.entries[key] = entry

	return exists
}

// Update applies update to the entry stored under key. It returns false,
// without calling update, when the key is absent.
func (t *StateTable[S]) Update(key string, update func(S) S) bool {
	entry, exists := t.entries[key]
	if !exists {
		return false
	}

	t.entries[key] = update(entry)

	return true
}

// Remove evicts and returns the entry stored under key
func (t *StateTable[S]) Remove(key string) (S, bool) {
	entry, exists := t.entries[key]
	if exists {
		delete(t.entries, key)
	}

	return entry, exists
}

func (t *StateTable[S]) Len() int {
	return len(t.entries)
}
