package seed

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoaderLoad(t *testing.T) {
	tmpDir := t.TempDir()
	yamlPath := filepath.Join(tmpDir, "seed.yaml")

	yamlContent := `---
node:
  name: workbench
capabilities:
  - label: assistant-local
    description: General purpose assistant for questions and summaries
    keywords: [chat, summarize, questions]
    model_tier: large
    tokens_per_second: 42
    has_rag: true
  - label: coder
    description: Code generation and review
    model_tier: medium
`

	if err := os.WriteFile(yamlPath, []byte(yamlContent), 0o644); err != nil {
		t.Fatalf("Failed to create test YAML file: %v", err)
	}

	loader := NewLoader(yamlPath)
	config, err := loader.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if config.Node.Name != "workbench" {
		t.Errorf("node name = %q, want workbench", config.Node.Name)
	}
	if len(config.Capabilities) != 2 {
		t.Fatalf("Load() returned %d capabilities, want 2", len(config.Capabilities))
	}
	if config.Capabilities[0].Label != "assistant-local" {
		t.Errorf("first label = %q, want assistant-local", config.Capabilities[0].Label)
	}
	if !config.Capabilities[0].HasRag {
		t.Error("has_rag not parsed")
	}
}

func TestLoaderLoadWithEnvVariables(t *testing.T) {
	t.Setenv("BEARING_TEST_NODE_NAME", "env-node")

	tmpDir := t.TempDir()
	yamlPath := filepath.Join(tmpDir, "seed.yaml")

	yamlContent := `---
node:
  name: ${BEARING_TEST_NODE_NAME}
capabilities:
  - label: assistant
`

	if err := os.WriteFile(yamlPath, []byte(yamlContent), 0o644); err != nil {
		t.Fatalf("Failed to create test YAML file: %v", err)
	}

	loader := NewLoader(yamlPath)
	config, err := loader.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if config.Node.Name != "env-node" {
		t.Errorf("node name = %q, want env-node", config.Node.Name)
	}
}

func TestLoaderLoadFileNotFound(t *testing.T) {
	loader := NewLoader("/nonexistent/path/seed.yaml")
	if _, err := loader.Load(); err == nil {
		t.Error("Load() with non-existent file should return error")
	}
}

func TestLoaderLoadMalformedYAML(t *testing.T) {
	tmpDir := t.TempDir()
	yamlPath := filepath.Join(tmpDir, "seed.yaml")

	if err := os.WriteFile(yamlPath, []byte("node: [unterminated"), 0o644); err != nil {
		t.Fatalf("Failed to create test YAML file: %v", err)
	}

	loader := NewLoader(yamlPath)
	if _, err := loader.Load(); err == nil {
		t.Error("Load() with malformed YAML should return error")
	}
}
