package output

import (
	"path/filepath"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

// token is a run of characters sharing one terminal color.
type token struct {
	text  string
	color string // hex like "#8be9fd", empty when the style has no opinion
}

const highlightStyle = "dracula"

// highlightLines tokenizes source lines for terminal rendering. The path
// picks the lexer; on any tokenization failure the lines come back as
// single uncolored tokens so rendering never fails on chroma.
func highlightLines(path string, lines []string) [][]token {
	lexer := lexerForFile(path)
	style := styles.Get(highlightStyle)
	if style == nil {
		style = styles.Fallback
	}

	source := strings.Join(lines, "\n")
	iterator, err := lexer.Tokenise(nil, source)
	if err != nil {
		return plainLines(lines)
	}

	result := make([][]token, 1, len(lines))
	for _, tok := range iterator.Tokens() {
		color := tokenColor(style, tok.Type)
		parts := strings.Split(tok.Value, "\n")
		for i, part := range parts {
			if i > 0 {
				result = append(result, nil)
			}
			if part == "" {
				continue
			}
			last := len(result) - 1
			result[last] = append(result[last], token{text: part, color: color})
		}
	}

	// Tokenization can drop a trailing newline; keep line counts aligned
	// with the input so callers can zip them back together.
	for len(result) < len(lines) {
		result = append(result, nil)
	}
	return result[:len(lines)]
}

func plainLines(lines []string) [][]token {
	result := make([][]token, len(lines))
	for i, line := range lines {
		if line != "" {
			result[i] = []token{{text: line}}
		}
	}
	return result
}

func lexerForFile(path string) chroma.Lexer {
	lexer := lexers.Match(filepath.Base(path))
	if lexer == nil {
		lexer = lexers.Match("file" + filepath.Ext(path))
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}
	return chroma.Coalesce(lexer)
}

func tokenColor(style *chroma.Style, tt chroma.TokenType) string {
	entry := style.Get(tt)
	if entry.Colour.IsSet() {
		return entry.Colour.String()
	}
	return ""
}
