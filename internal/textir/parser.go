package textir

import (
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/fatih/color"
)

// Parse builds a Program from source text. Grounded on grammar/parser.go's
// ParseFile: the same participle.Build + caret-style error report, with
// ParseString taking source directly since this package's callers (tests,
// cmd/rvsdgc) already hold the text rather than a file path.
func Parse(name, source string) (*Program, error) {
	parser, err := participle.Build[Program](
		participle.Lexer(Lexer),
		participle.Elide("Whitespace", "Comment"),
		participle.UseLookahead(4),
	)
	if err != nil {
		return nil, fmt.Errorf("textir: failed to build parser: %w", err)
	}
	program, err := parser.ParseString(name, source)
	if err != nil {
		return nil, fmt.Errorf("%s\n%w", reportParseError(source, err), err)
	}
	return program, nil
}

// reportParseError renders grammar/parser.go's caret-style message as a
// string (rather than printing directly) so callers can route it through
// internal/diag or their own output.
func reportParseError(src string, err error) string {
	pe, ok := err.(participle.Error)
	if !ok {
		return color.RedString("unexpected error: %s", err)
	}
	pos := pe.Position()
	lines := strings.Split(src, "\n")
	if pos.Line <= 0 || pos.Line > len(lines) {
		return color.RedString("syntax error at unknown location: %s", err)
	}
	line := lines[pos.Line-1]
	caret := strings.Repeat(" ", pos.Column-1) + "^"
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n%s\n%s\n",
		color.RedString("syntax error in %s at line %d, column %d:", pos.Filename, pos.Line, pos.Column),
		line,
		color.HiRedString(caret))
	fmt.Fprintf(&b, "-> %s", pe.Message())
	return b.String()
}
