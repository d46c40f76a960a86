package widget

import (
	"fmt"
	"html"
	"regexp"
	"strings"
)

// RenderMarkdown converts the restricted markdown dialect used by assistant
// messages into an HTML fragment. It is pure and stateless.
//
// Rule precedence, which must stay deterministic: fenced code blocks are
// lifted out first so no later rule can rewrite their contents, then headers,
// bold before italic (so ** is never half-consumed as *), inline code,
// list items, and finally paragraph/line-break handling. Unmatched markers
// pass through literally.
var (
	fencedCodeRe  = regexp.MustCompile("(?s)```(?:[a-zA-Z0-9]*\n)?(.*?)```")
	h3Re          = regexp.MustCompile(`(?m)^### (.+)$`)
	h2Re          = regexp.MustCompile(`(?m)^## (.+)$`)
	h1Re          = regexp.MustCompile(`(?m)^# (.+)$`)
	boldStarRe    = regexp.MustCompile(`\*\*(.+?)\*\*`)
	boldUnderRe   = regexp.MustCompile(`__(.+?)__`)
	italicStarRe  = regexp.MustCompile(`\*([^*\n]+)\*`)
	italicUnderRe = regexp.MustCompile(`_([^_\n]+)_`)
	inlineCodeRe  = regexp.MustCompile("`([^`\n]+)`")
	bulletItemRe  = regexp.MustCompile(`(?m)^[*+-] (.+)$`)
	numberItemRe  = regexp.MustCompile(`(?m)^\d+\. (.+)$`)
)

const codePlaceholder = "\x00code%d\x00"

func RenderMarkdown(input string) string {
	text := strings.ReplaceAll(input, "\r\n", "\n")

	// 1. Fenced code blocks out of the way before any inline rule runs.
	var codeBlocks []string
	text = fencedCodeRe.ReplaceAllStringFunc(text, func(m string) string {
		inner := fencedCodeRe.FindStringSubmatch(m)[1]
		block := "<pre><code>" + html.EscapeString(strings.TrimRight(inner, "\n")) + "</code></pre>"
		codeBlocks = append(codeBlocks, block)
		return fmt.Sprintf(codePlaceholder, len(codeBlocks)-1)
	})

	// 2. Headers, longest prefix first.
	text = h3Re.ReplaceAllString(text, "<h3>$1</h3>")
	text = h2Re.ReplaceAllString(text, "<h2>$1</h2>")
	text = h1Re.ReplaceAllString(text, "<h1>$1</h1>")

	// 3. Bold, then italic.
	text = boldStarRe.ReplaceAllString(text, "<strong>$1</strong>")
	text = boldUnderRe.ReplaceAllString(text, "<strong>$1</strong>")
	text = italicStarRe.ReplaceAllString(text, "<em>$1</em>")
	text = italicUnderRe.ReplaceAllString(text, "<em>$1</em>")

	// 4. Inline code spans.
	text = inlineCodeRe.ReplaceAllStringFunc(text, func(m string) string {
		inner := inlineCodeRe.FindStringSubmatch(m)[1]
		return "<code>" + html.EscapeString(inner) + "</code>"
	})

	// 5. List items.
	text = bulletItemRe.ReplaceAllString(text, "<li>$1</li>")
	text = numberItemRe.ReplaceAllString(text, "<li>$1</li>")

	// 6. Paragraphs and line breaks, wrapping contiguous list items once.
	text = assembleBlocks(text)

	// Restore code blocks last.
	for i, block := range codeBlocks {
		text = strings.Replace(text, fmt.Sprintf(codePlaceholder, i), block, 1)
	}

	return text
}

// assembleBlocks groups the line-level output: runs of <li> become one <ul>,
// block elements pass through, and everything else becomes a paragraph with
// single newlines rendered as <br>.
func assembleBlocks(text string) string {
	lines := strings.Split(text, "\n")
	var out strings.Builder
	var para []string
	var items []string

	flushPara := func() {
		if len(para) == 0 {
			return
		}
		out.WriteString("<p>" + strings.Join(para, "<br>") + "</p>")
		para = nil
	}
	flushItems := func() {
		if len(items) == 0 {
			return
		}
		out.WriteString("<ul>" + strings.Join(items, "") + "</ul>")
		items = nil
	}

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == "":
			flushItems()
			flushPara()
		case strings.HasPrefix(trimmed, "<li>"):
			flushPara()
			items = append(items, trimmed)
		case isBlockElement(trimmed):
			flushItems()
			flushPara()
			out.WriteString(trimmed)
		default:
			flushItems()
			para = append(para, trimmed)
		}
	}
	flushItems()
	flushPara()

	return out.String()
}

var blockPrefixes = []string{"<h1>", "<h2>", "<h3>", "<pre>", "\x00code"}

func isBlockElement(line string) bool {
	for _, prefix := range blockPrefixes {
		if strings.HasPrefix(line, prefix) {
			return true
		}
	}
	return false
}
