package document

// Page is one unit of source text as produced by an extractor, numbered from 1.
type Page struct {
	Number int    `json:"page"`
	Text   string `json:"text"`
}

// Chunk is a bounded-size fragment of a page's text. ChunkID has the form
// "<page>_<seq>" where seq is 1-based within its page.
type Chunk struct {
	Page    int    `json:"page"`
	ChunkID string `json:"chunk_id"`
	Text    string `json:"text"`
}

// MetaSection is a fixed-size group of consecutive chunks, flattened across
// all pages, joined by newlines. Index is 1-based.
type MetaSection struct {
	Index int
	Text  string
}

// CompressedMetaSection is a MetaSection after normalization. Its text never
// exceeds the configured character budget.
type CompressedMetaSection struct {
	Index int
	Text  string
}

// MetaSummary is the refined summary for one meta-section, parsed out of a
// single batched model response.
type MetaSummary struct {
	Section int    `json:"section"`
	Summary string `json:"summary"`
}

// Result holds everything a single summarization run produced. It is built
// once per run and never mutated afterwards.
type Result struct {
	Pages              []Page
	Chunks             []Chunk
	MetaSections       []MetaSection
	CompressedSections []CompressedMetaSection
	MetaSummaries      []MetaSummary
	GlobalSummary      string
}
