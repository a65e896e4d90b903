package render

import (
	"strings"
	"sync"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

// Highlighter is the syntax capability: it turns a line of text in the
// given language into markup the surface inserts verbatim
type Highlighter interface {
	Highlight(language, text string) string
}

// ChromaHighlighter colors text with chroma lexers and a terminal formatter
type ChromaHighlighter struct {
	style     *chroma.Style
	formatter chroma.Formatter

	mu     sync.Mutex
	lexers map[string]chroma.Lexer
}

// NewChromaHighlighter creates a highlighter for a chroma style and
// terminal formatter name (e.g. "monokai", "terminal256")
func NewChromaHighlighter(styleName, formatterName string) *ChromaHighlighter {
	return &ChromaHighlighter{
		style:     styles.Get(styleName),
		formatter: formatters.Get(formatterName),
		lexers:    make(map[string]chroma.Lexer),
	}
}

// Highlight applies syntax highlighting to a single line
func (h *ChromaHighlighter) Highlight(language, text string) string {
	if text == "" {
		return ""
	}

	iterator, err := h.lexer(language).Tokenise(nil, text)
	if err != nil {
		return text
	}

	var buf strings.Builder
	if err := h.formatter.Format(&buf, h.style, iterator); err != nil {
		return text
	}

	// Remove any newlines the lexer or formatter adds
	highlighted := buf.String()
	highlighted = strings.ReplaceAll(highlighted, "\n", "")
	highlighted = strings.ReplaceAll(highlighted, "\r", "")
	return highlighted
}

func (h *ChromaHighlighter) lexer(language string) chroma.Lexer {
	h.mu.Lock()
	defer h.mu.Unlock()

	if lexer, ok := h.lexers[language]; ok {
		return lexer
	}
	lexer := LexerFor(language)
	h.lexers[language] = lexer
	return lexer
}

// LexerFor resolves a language tag to a lexer. The tag may be a lexer name,
// an alias or a filename; unknown tags fall back to plain text.
func LexerFor(language string) chroma.Lexer {
	lexer := lexers.Get(language)
	if lexer == nil {
		lexer = lexers.Match(language)
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}
	return chroma.Coalesce(lexer)
}

// LexerName returns the canonical name of the lexer a tag resolves to
func LexerName(language string) string {
	return LexerFor(language).Config().Name
}

// PlainHighlighter returns text unchanged
type PlainHighlighter struct{}

// Highlight implements Highlighter
func (PlainHighlighter) Highlight(_, text string) string {
	return text
}
