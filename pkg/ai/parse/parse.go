// Package parse defines the provider-agnostic structured document parsing
// interface. Unlike ocr, parsers preserve document structure (headings,
// tables, sections) in their markdown output.
package parse

import (
	"context"
	"strings"
)

// DocumentParser converts a document into structured markdown
type DocumentParser interface {
	ParseDocument(ctx context.Context, input Input) (*Result, error)
}

// Input describes the document to parse
type Input struct {
	// Raw document bytes
	Data []byte

	// Original filename, used for content-type detection by the provider
	Filename string

	MimeType string
}

// FromBytes builds an Input from raw document bytes
func FromBytes(data []byte, filename string) Input {
	return Input{Data: data, Filename: filename}
}

// Result holds the parsed markdown plus derived structure statistics
type Result struct {
	Markdown string
	JobID    string
	Stats    ContentStats
	Metadata map[string]any
}

// ContentStats summarizes the structure of parsed markdown
type ContentStats struct {
	TotalCharacters int
	TotalLines      int
	WordCount       int
	HeaderCount     int
	HasTables       bool
	Headers         []string
}

// AnalyzeMarkdown derives structure statistics from parsed markdown
func AnalyzeMarkdown(markdown string) ContentStats {
	lines := strings.Split(markdown, "\n")

	var headers []string
	for _, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "#") {
			headers = append(headers, strings.TrimSpace(line))
		}
	}

	return ContentStats{
		TotalCharacters: len(markdown),
		TotalLines:      len(lines),
		WordCount:       len(strings.Fields(markdown)),
		HeaderCount:     len(headers),
		HasTables:       strings.Contains(markdown, "|"),
		Headers:         headers,
	}
}
