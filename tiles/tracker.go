package tiles

// LoadTracker records which tiles of one grid generation finished loading
type LoadTracker struct {
	pending map[string]bool
	missing int
}

func NewLoadTracker(keys []string) *LoadTracker {
	t := &LoadTracker{pending: make(map[string]bool, len(keys))}
	for _, k := range keys {
		if _, exists := t.pending[k]; !exists {
			t.pending[k] = false
			t.missing++
		}
	}
	return t
}

// Has reports whether key belongs to this generation
func (t *LoadTracker) Has(key string) bool {
	_, ok := t.pending[key]
	return ok
}

// MarkLoaded flags key as loaded. Keys of other generations are ignored and
// false is returned.
func (t *LoadTracker) MarkLoaded(key string) bool {
	loaded, ok := t.pending[key]
	if !ok {
		return false
	}
	if !loaded {
		t.pending[key] = true
		t.missing--
	}
	return true
}

// Done reports whether every tracked tile has loaded
func (t *LoadTracker) Done() bool {
	return t.missing == 0
}

func (t *LoadTracker) Missing() int {
	return t.missing
}

func (t *LoadTracker) Keys() []string {
	keys := make([]string, 0, len(t.pending))
	for k := range t.pending {
		keys = append(keys, k)
	}
	return keys
}
