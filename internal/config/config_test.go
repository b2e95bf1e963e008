package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse([]byte("experiment:\n  name: enriched-v1\n  text_to_embed: enriched\n"))
	require.NoError(t, err)

	assert.Equal(t, "enriched-v1", cfg.Experiment.Name)
	assert.Equal(t, "enriched", cfg.Experiment.TextToEmbed)
	assert.Equal(t, 1, cfg.Experiment.Workers)
	assert.Equal(t, ",", cfg.Dataset.Delimiter)
	assert.Equal(t, "tfidf", cfg.Embedder.Type)
	assert.Equal(t, "memory", cfg.VectorStore.Type)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Format)
}

func TestParse_QdrantAndOpenAIDefaults(t *testing.T) {
	yml := `
experiment:
  name: exp1
embedder:
  type: openai
  openai: {}
vector_store:
  type: qdrant
  qdrant:
    host: qdrant.local
`
	cfg, err := Parse([]byte(yml))
	require.NoError(t, err)

	require.NotNil(t, cfg.Embedder.OpenAI)
	assert.Equal(t, "https://api.openai.com/v1", cfg.Embedder.OpenAI.BaseURL)
	assert.Equal(t, "OPENAI_API_KEY", cfg.Embedder.OpenAI.APIKeyEnv)
	assert.Equal(t, "text-embedding-3-small", cfg.Embedder.OpenAI.Model)
	assert.Equal(t, 30, cfg.Embedder.OpenAI.TimeoutSecs)

	require.NotNil(t, cfg.VectorStore.Qdrant)
	assert.Equal(t, "qdrant.local", cfg.VectorStore.Qdrant.Host)
	assert.Equal(t, 6334, cfg.VectorStore.Qdrant.Port)
	assert.Equal(t, "movies_exp1", cfg.VectorStore.Qdrant.Collection)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yml  string
	}{
		{"unknown strategy", "experiment:\n  text_to_embed: plot\n"},
		{"unknown embedder", "embedder:\n  type: word2vec\n"},
		{"openai without section", "embedder:\n  type: openai\n"},
		{"unknown store", "vector_store:\n  type: faiss\n"},
		{"qdrant without section", "vector_store:\n  type: qdrant\n"},
		{"chromem without section", "vector_store:\n  type: chromem\n"},
		{"unknown log format", "logging:\n  format: xml\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yml))
			require.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, defaultConfig(), cfg)
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := defaultConfig()
	cfg.Experiment.TextToEmbed = "enriched"
	cfg.VectorStore = VectorStoreConfig{Type: "chromem", Chromem: &ChromemConfig{Path: "/tmp/x"}}

	require.NoError(t, Save(path, cfg))
	_, err := os.Stat(path)
	require.NoError(t, err)

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "enriched", loaded.Experiment.TextToEmbed)
	assert.Equal(t, "/tmp/x", loaded.VectorStore.Chromem.Path)
	assert.Equal(t, "movies_default", loaded.VectorStore.Chromem.Collection)
}
