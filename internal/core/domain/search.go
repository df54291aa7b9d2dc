package domain

// SearchResult is one ranked hit returned to callers.
type SearchResult struct {
	// Text is the full chunk text.
	Text string

	// Metadata is the stored entry metadata.
	Metadata EntryMetadata

	// Distance is the raw L2 distance to the query.
	Distance float64

	// RelevanceScore is derived from Distance and lies in [0, 1].
	RelevanceScore float64

	// Preview is a truncated form of Text for display.
	Preview string
}

// Citation is the attribution shown next to a generated answer.
type Citation struct {
	Source         string  `json:"source"`
	Title          string  `json:"title"`
	Preview        string  `json:"preview"`
	RelevanceScore float64 `json:"relevance_score"`
}

// Citation returns the attribution for r.
func (r SearchResult) Citation() Citation {
	return Citation{
		Source:         r.Metadata.Source,
		Title:          r.Metadata.Title,
		Preview:        r.Preview,
		RelevanceScore: r.RelevanceScore,
	}
}
