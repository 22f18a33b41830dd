package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Database     DatabaseConfig `yaml:"database"`
	EmbedLLM     LLMConfig      `yaml:"embed_llm"`
	InferenceLLM LLMConfig      `yaml:"inference_llm"`
	RAG          RAGConfig      `yaml:"rag"`
}

type DatabaseConfig struct {
	DSN      string `yaml:"dsn"`
	Password string `yaml:"password"`
	Debug    bool   `yaml:"debug"`
}

type LLMConfig struct {
	Provider string `yaml:"provider"`
	BaseURL  string `yaml:"base_url"`
	Key      string `yaml:"key"`
	Model    string `yaml:"model"`
}

type RAGConfig struct {
	ChunkSize       int    `yaml:"chunk_size"`
	TopK            int    `yaml:"top_k"`
	VectorDBPath    string `yaml:"vector_db_path"`
	InMemory        bool   `yaml:"in_memory"`
	EmbedTimeoutSec int    `yaml:"embed_timeout"`
	IndexTimeoutSec int    `yaml:"index_timeout"`
}

const (
	defaultChunkSize    = 500
	defaultTopK         = 3
	defaultVectorDBPath = "./vectordb"
	defaultEmbedTimeout = 30
	defaultIndexTimeout = 30
)

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.RAG.ChunkSize <= 0 {
		c.RAG.ChunkSize = defaultChunkSize
	}
	if c.RAG.TopK <= 0 {
		c.RAG.TopK = defaultTopK
	}
	if c.RAG.VectorDBPath == "" {
		c.RAG.VectorDBPath = defaultVectorDBPath
	}
	if c.RAG.EmbedTimeoutSec <= 0 {
		c.RAG.EmbedTimeoutSec = defaultEmbedTimeout
	}
	if c.RAG.IndexTimeoutSec <= 0 {
		c.RAG.IndexTimeoutSec = defaultIndexTimeout
	}
}
