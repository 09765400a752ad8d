package docs

// Document is a read-only entry of the patient record. Documents are
// seeded at process start and never mutated.
type Document struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Type    string `json:"type"`
	Date    string `json:"date"`
	Content string `json:"content"`
}

// Store serves the fixed sample document set. It has no mutation
// operations and no error conditions.
type Store struct {
	order []Document
	byID  map[string]Document
}

func NewStore() *Store {
	s := &Store{byID: make(map[string]Document, len(sampleDocuments))}
	for _, d := range sampleDocuments {
		s.order = append(s.order, d)
		s.byID[d.ID] = d
	}
	return s
}

// List returns all documents in stable order. The returned slice is a
// copy; callers cannot affect the store.
func (s *Store) List() []Document {
	out := make([]Document, len(s.order))
	copy(out, s.order)
	return out
}

func (s *Store) Get(id string) (Document, bool) {
	d, ok := s.byID[id]
	return d, ok
}
