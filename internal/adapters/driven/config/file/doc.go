// Package file provides file-based implementations of driven port interfaces.
// These adapters persist data to the local filesystem.
//
// Adapters:
//   - ConfigStore: TOML-based configuration storage
//
// A config file looks like:
//
//	[engine]
//	namespace = "docs"
//
//	[chunking]
//	size = 1000
//	overlap = 200
//
//	[embedding]
//	provider = "ollama"
//	model = "nomic-embed-text"
//	timeout = "30s"
package file
