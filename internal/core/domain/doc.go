// Package domain defines the core business entities for sercha-rag.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: Source text submitted for ingestion
//   - Chunk: A word window cut from a document
//   - IndexEntry: A stored chunk with its embedding and metadata
//   - Version: The lifecycle record of one collection
//   - SearchResult: A ranked hit returned to callers
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
