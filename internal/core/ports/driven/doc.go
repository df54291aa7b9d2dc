// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the engine to function:
//
//   - EmbeddingProvider: Turns text into vectors (Ollama, OpenAI)
//   - VectorBackend: Named collections of vectors (SQLite, memory)
//   - VersionStore: Version records and the active pointer per namespace
//   - ConfigStore: Application configuration
//   - PostProcessor: Splits documents into chunks
//
// # Optional Interfaces
//
// These can be nil when the caller supplies documents directly:
//
//   - DocumentLoader: Reads documents from local files
//   - Normaliser: Transforms raw file bytes into documents
//   - FileWatcher: Reports file changes for continuous ingestion
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter, connector, or normaliser package
package driven
