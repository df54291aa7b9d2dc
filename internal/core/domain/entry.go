package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"time"
)

// entryIDLength is the number of hex characters kept from the digest.
const entryIDLength = 32

// IndexEntry is one stored chunk inside a collection.
type IndexEntry struct {
	// ID is stable for a given source and chunk position.
	ID string

	// Embedding is the vector representation of Text.
	Embedding []float64

	// Text is the chunk text.
	Text string

	// Metadata describes where the chunk came from.
	Metadata EntryMetadata
}

// EntryMetadata is attached to every IndexEntry at ingestion time.
type EntryMetadata struct {
	Source         string    `json:"source"`
	Title          string    `json:"title"`
	Tags           []string  `json:"tags,omitempty"`
	ChunkIndex     int       `json:"chunk_index"`
	TotalChunks    int       `json:"total_chunks"`
	IngestedAt     time.Time `json:"ingested_at"`
	EmbeddingModel string    `json:"embedding_model"`

	// Degraded marks entries stored with a fallback zero vector.
	Degraded bool `json:"degraded,omitempty"`
}

// EntryID derives the identifier for chunk index of source.
// Re-ingesting the same source yields the same IDs, which turns writes
// into upserts.
func EntryID(source string, chunkIndex int) string {
	sum := sha256.Sum256([]byte(source + "#" + strconv.Itoa(chunkIndex)))
	return hex.EncodeToString(sum[:])[:entryIDLength]
}

// QueryHit is a raw nearest-neighbour result from a collection.
type QueryHit struct {
	Entry IndexEntry

	// Distance is the Euclidean distance to the query vector.
	Distance float64
}

// Embedding is the result of embedding one text.
type Embedding struct {
	Vector []float64

	// Degraded is true when the provider failed and Vector is the zero
	// fallback.
	Degraded bool
}
