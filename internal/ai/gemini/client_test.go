package gemini

import (
	"context"
	"testing"
)

func TestNewGeneratorRequiresAPIKey(t *testing.T) {
	if _, err := NewGenerator(context.Background(), "  ", "", 0, nil); err == nil {
		t.Error("expected an error for a blank api key")
	}
}

func TestGenerateContentGuards(t *testing.T) {
	var nilGen *Generator
	if _, err := nilGen.GenerateContent(context.Background(), "prompt"); err == nil {
		t.Error("expected an error from a nil generator")
	}

	uninitialized := &Generator{}
	if _, err := uninitialized.GenerateContent(context.Background(), "prompt"); err == nil {
		t.Error("expected an error from an uninitialized generator")
	}
}

func TestModel(t *testing.T) {
	var nilGen *Generator
	if got := nilGen.Model(); got != "" {
		t.Errorf("expected empty model for nil generator, got %q", got)
	}

	gen := &Generator{modelName: "gemini-2.0-flash"}
	if got := gen.Model(); got != "gemini-2.0-flash" {
		t.Errorf("unexpected model name: %q", got)
	}
}
