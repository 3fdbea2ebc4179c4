package domain

// Metadata is the per-record payload stored next to a vector. Text is the
// canonical field; Content is the legacy alternative some records carry
// instead, optionally labeled by Title.
type Metadata struct {
	Text    string
	Content string
	Title   string
}

// VectorRecord is an (id, vector, metadata) triple owned by the vector store.
// The id is the flattened profile path of the source fragment, so re-indexing
// the same profile overwrites in place.
type VectorRecord struct {
	ID     string
	Vector []float32
	Meta   Metadata
}

// Match is a single nearest-neighbor search hit.
type Match struct {
	ID    string
	Score float64
	Meta  Metadata
}

// ExtractText returns the display text for a match following the original
// precedence: Text wins; otherwise Content, prefixed with Title when one is
// present. Empty means the match carries nothing usable.
func (m Metadata) ExtractText() string {
	if m.Text != "" {
		return m.Text
	}
	if m.Content == "" {
		return ""
	}
	if m.Title != "" {
		return m.Title + ": " + m.Content
	}
	return m.Content
}

// IndexStamp records which embedder built the index. It makes a
// provider/dimensionality mismatch between index-build time and query time
// observable at startup.
type IndexStamp struct {
	Provider   string
	Model      string
	Dimensions int
}

// RetrievalContext is the assembled output of the retrieval stage.
type RetrievalContext struct {
	Context string
	Matches []Match
}
