// Package connectors provides document sources for the ingestion pipeline.
// Each connector knows how to read documents from one kind of source and
// hand them to the normalisers.
//
// Only the local filesystem is supported: see the filesystem package.
package connectors
