// Package textir implements a small textual surrogate for the CFG/TAC
// ingress API: a hand-writable fn/bb/phi/br/arithmetic/load/store surface
// parsed with participle, standing in for a real bitcode reader so
// cmd/rvsdgc can drive the aggregation/construction bridge end to end.
package textir

import "github.com/alecthomas/participle/v2/lexer"

// Lexer defines this package's small CFG token vocabulary: a Type token
// (bitN/ptr/memstate/ctlN) recognized ahead of plain identifiers so the
// grammar can capture declared types directly.
var Lexer = lexer.MustStateful(lexer.Rules{
	"Root": {
		{"Comment", `//[^\n]*`, nil},
		{"Type", `\b(bit[0-9]+|ptr|memstate|iostate|ctl[0-9]+)\b`, nil},
		{"Ident", `[a-zA-Z_][a-zA-Z0-9_%]*`, nil},
		{"Integer", `0x[0-9a-fA-F]+|[0-9]+`, nil},
		{"Punct", `[{}()\[\]:,=.]`, nil},
		{"Whitespace", `[ \t\r\n]+`, nil},
	},
})
