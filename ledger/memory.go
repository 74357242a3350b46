package ledger

// MemoryBacking keeps the attempt mapping in process memory. It exists so
// the authenticator can be exercised without touching the filesystem.
type MemoryBacking struct {
	records map[string]Record
}

// NewMemoryBacking returns an empty in-memory backing store.
func NewMemoryBacking() *MemoryBacking {
	return &MemoryBacking{records: make(map[string]Record)}
}

// Load returns a copy of the mapping so callers cannot mutate shared state.
func (m *MemoryBacking) Load() (map[string]Record, error) {
	out := make(map[string]Record, len(m.records))
	for k, v := range m.records {
		out[k] = v
	}
	return out, nil
}

// Store replaces the mapping wholesale, mirroring whole-file persistence.
func (m *MemoryBacking) Store(all map[string]Record) error {
	next := make(map[string]Record, len(all))
	for k, v := range all {
		next[k] = v
	}
	m.records = next
	return nil
}
