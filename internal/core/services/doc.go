// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// The engine is assembled from four services sharing one Embedder and one
// VectorIndex:
//
//   - IngestionService: sanitize, chunk, embed and upsert documents
//   - VersionManager: collection lifecycle and the atomic active pointer
//   - SearchService: similarity queries against the active collection
//   - SettingsService: typed settings over the config store
package services
