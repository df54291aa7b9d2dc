package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAIProvider_IsValid(t *testing.T) {
	assert.True(t, AIProviderOllama.IsValid())
	assert.True(t, AIProviderOpenAI.IsValid())
	assert.False(t, AIProvider("anthropic").IsValid())
	assert.False(t, AIProvider("").IsValid())
}

func TestAIProvider_Description(t *testing.T) {
	assert.Equal(t, "Ollama (local)", AIProviderOllama.Description())
	assert.Equal(t, "OpenAI (cloud)", AIProviderOpenAI.Description())
	assert.Equal(t, unknownDescription, AIProvider("x").Description())
}

func TestDefaultEngineSettings_Valid(t *testing.T) {
	s := DefaultEngineSettings()

	require.NoError(t, s.Validate())
	assert.Equal(t, 1000, s.Chunking.Size)
	assert.Equal(t, 200, s.Chunking.Overlap)
	assert.Equal(t, 100, s.Chunking.MinDocumentLength)
	assert.Equal(t, 768, s.Embedding.Dimensions)
	assert.Equal(t, 5, s.Embedding.Workers)
	assert.Equal(t, "nomic-embed-text", s.Embedding.Model)
	assert.Equal(t, StorageSQLite, s.Storage.Backend)
	assert.Equal(t, 200, s.Search.PreviewLength)
}

func TestChunkingSettings_Validate(t *testing.T) {
	tests := []struct {
		name    string
		c       ChunkingSettings
		wantErr bool
	}{
		{"defaults", ChunkingSettings{Size: 1000, Overlap: 200}, false},
		{"zero overlap", ChunkingSettings{Size: 10, Overlap: 0}, false},
		{"overlap equals size", ChunkingSettings{Size: 10, Overlap: 10}, true},
		{"overlap exceeds size", ChunkingSettings{Size: 10, Overlap: 11}, true},
		{"negative overlap", ChunkingSettings{Size: 10, Overlap: -1}, true},
		{"zero size", ChunkingSettings{Size: 0, Overlap: 0}, true},
		{"negative min length", ChunkingSettings{Size: 10, MinDocumentLength: -1}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.c.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidConfiguration)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestEngineSettings_Validate(t *testing.T) {
	mutate := map[string]func(*EngineSettings){
		"empty namespace":  func(s *EngineSettings) { s.Namespace = "" },
		"bad provider":     func(s *EngineSettings) { s.Embedding.Provider = "x" },
		"zero dimensions":  func(s *EngineSettings) { s.Embedding.Dimensions = 0 },
		"zero workers":     func(s *EngineSettings) { s.Embedding.Workers = 0 },
		"bad backend":      func(s *EngineSettings) { s.Storage.Backend = "redis" },
		"zero top k":       func(s *EngineSettings) { s.Search.DefaultTopK = 0 },
		"bad chunk window": func(s *EngineSettings) { s.Chunking.Overlap = s.Chunking.Size },
	}

	for name, fn := range mutate {
		t.Run(name, func(t *testing.T) {
			s := DefaultEngineSettings()
			fn(&s)
			assert.ErrorIs(t, s.Validate(), ErrInvalidConfiguration)
		})
	}
}

func TestEmbeddingSettings_IsConfigured(t *testing.T) {
	assert.True(t, EmbeddingSettings{Provider: AIProviderOllama}.IsConfigured())
	assert.False(t, EmbeddingSettings{Provider: AIProviderOpenAI}.IsConfigured())
	assert.True(t, EmbeddingSettings{Provider: AIProviderOpenAI, APIKey: "k"}.IsConfigured())
	assert.False(t, EmbeddingSettings{}.IsConfigured())
}

func TestPipelineConfigFor(t *testing.T) {
	cfg := PipelineConfigFor(ChunkingSettings{Size: 50, Overlap: 5})

	assert.Equal(t, []string{"chunker"}, cfg.Processors)
	assert.Equal(t, 50, cfg.GetProcessorConfig("chunker")["chunk_size"])
	assert.Equal(t, 5, cfg.GetProcessorConfig("chunker")["overlap"])
	assert.Nil(t, cfg.GetProcessorConfig("stemmer"))

	var empty PipelineConfig
	assert.Nil(t, empty.GetProcessorConfig("chunker"))
}
