package widget

import (
	"strings"
	"testing"
)

func TestRenderMarkdown(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "plain text becomes paragraph",
			input:    "hello world",
			expected: "<p>hello world</p>",
		},
		{
			name:     "bold and italic and code",
			input:    "**bold** and *italic* and `code`",
			expected: "<p><strong>bold</strong> and <em>italic</em> and <code>code</code></p>",
		},
		{
			name:     "underscore emphasis",
			input:    "__strong__ and _soft_",
			expected: "<p><strong>strong</strong> and <em>soft</em></p>",
		},
		{
			name:     "headers",
			input:    "# Title\n## Section\n### Sub",
			expected: "<h1>Title</h1><h2>Section</h2><h3>Sub</h3>",
		},
		{
			name:     "bullet list wrapped once",
			input:    "- one\n- two\n- three",
			expected: "<ul><li>one</li><li>two</li><li>three</li></ul>",
		},
		{
			name:     "numbered list",
			input:    "1. first\n2. second",
			expected: "<ul><li>first</li><li>second</li></ul>",
		},
		{
			name:     "single newline becomes break",
			input:    "line one\nline two",
			expected: "<p>line one<br>line two</p>",
		},
		{
			name:     "blank line splits paragraphs",
			input:    "para one\n\npara two",
			expected: "<p>para one</p><p>para two</p>",
		},
		{
			name:     "inline code is escaped",
			input:    "run `<script>` now",
			expected: "<p>run <code>&lt;script&gt;</code> now</p>",
		},
		{
			name:     "unmatched markers pass through",
			input:    "a * lone star and an _underscore",
			expected: "<p>a * lone star and an _underscore</p>",
		},
		{
			name:     "bold not half-consumed as italic",
			input:    "**only bold**",
			expected: "<p><strong>only bold</strong></p>",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RenderMarkdown(tt.input)
			if got != tt.expected {
				t.Errorf("RenderMarkdown(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestRenderMarkdownFencedCode(t *testing.T) {
	input := "before\n```go\nif x < 1 {\n\treturn **not bold**\n}\n```\nafter"
	got := RenderMarkdown(input)

	if !strings.Contains(got, "<pre><code>") {
		t.Fatalf("expected fenced block, got %q", got)
	}
	if !strings.Contains(got, "if x &lt; 1 {") {
		t.Errorf("code content should be escaped, got %q", got)
	}
	if strings.Contains(got, "<strong>") {
		t.Errorf("inline rules must not run inside code blocks, got %q", got)
	}
	if !strings.Contains(got, "<p>before</p>") || !strings.Contains(got, "<p>after</p>") {
		t.Errorf("surrounding text should remain paragraphs, got %q", got)
	}
}

func TestRenderMarkdownDeterministic(t *testing.T) {
	input := "# Heading\n\n**bold** with `code`\n\n- item *one*\n- item two"
	first := RenderMarkdown(input)
	for i := 0; i < 5; i++ {
		if got := RenderMarkdown(input); got != first {
			t.Fatalf("run %d differed: %q vs %q", i, got, first)
		}
	}
}
