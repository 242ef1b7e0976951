// Package docload reads plain-text job descriptions and consultant profiles
// from disk for folder-based runs. Binary formats (PDF, DOCX) go through an
// external extraction step before they land here.
package docload

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/arnavj/consultmatch/internal/ai"
)

var textExtensions = map[string]bool{
	".txt":  true,
	".text": true,
	".md":   true,
}

// LoadFile reads a single document and returns its text content.
func LoadFile(path string) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if !textExtensions[ext] {
		return "", fmt.Errorf("unsupported document format %q (expected plain text)", ext)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read document: %w", err)
	}

	return string(data), nil
}

// LoadFolder reads every plain-text document in dir as a profile. The profile
// name is the file name without extension; unsupported formats are skipped
// with a warning.
func LoadFolder(dir string, logger *zap.Logger) ([]ai.Profile, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read profiles folder: %w", err)
	}

	var profiles []ai.Profile
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		content, err := LoadFile(path)
		if err != nil {
			logger.Warn("skipping document", zap.String("file", entry.Name()), zap.Error(err))
			continue
		}

		name := strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))
		profiles = append(profiles, ai.Profile{Name: name, Content: content})
	}

	sort.Slice(profiles, func(i, j int) bool { return profiles[i].Name < profiles[j].Name })

	return profiles, nil
}

// ParseJDTitle extracts the job title from a "Job Title:" line, falling back
// to "Unknown Job" when the document carries none.
func ParseJDTitle(jdContent string) string {
	for _, line := range strings.Split(jdContent, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(strings.ToLower(trimmed), "job title:") {
			if _, title, ok := strings.Cut(trimmed, ":"); ok {
				if title = strings.TrimSpace(title); title != "" {
					return title
				}
			}
		}
	}
	return "Unknown Job"
}
