package render

import (
	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
)

// DefaultLanguage is the grammar used when none is configured
const DefaultLanguage = "accesslog"

// AccessLog lexes web server access logs (common and combined formats)
var AccessLog = lexers.Register(chroma.MustNewLexer(
	&chroma.Config{
		Name:      "AccessLog",
		Aliases:   []string{"accesslog", "access-log"},
		Filenames: []string{"access.log", "*.access.log", "access_log"},
		MimeTypes: []string{"text/x-accesslog"},
	},
	accessLogRules,
))

const httpMethods = `GET|POST|PUT|DELETE|PATCH|HEAD|OPTIONS|CONNECT|TRACE`

func accessLogRules() chroma.Rules {
	return chroma.Rules{
		"root": {
			{`\s+`, chroma.TextWhitespace, nil},
			{`\[[^\]\n]*\]`, chroma.LiteralDate, nil},
			{`"(?=(` + httpMethods + `)\s)`, chroma.LiteralString, chroma.Push("request")},
			{`"`, chroma.LiteralString, chroma.Push("string")},
			{`\b\d{1,3}(?:\.\d{1,3}){3}\b`, chroma.NameConstant, nil},
			{`\b[1-5]\d\d\b`, chroma.NumberInteger, nil},
			{`\b\d+(?:\.\d+)?\b`, chroma.Number, nil},
			{`[^\s"\[]+`, chroma.Text, nil},
			{`\[`, chroma.Punctuation, nil},
		},
		"request": {
			{`(` + httpMethods + `)\b`, chroma.Keyword, nil},
			{`HTTP/\d(?:\.\d)?`, chroma.KeywordType, nil},
			{`\s+`, chroma.TextWhitespace, nil},
			{`[^\s"]+`, chroma.NameTag, nil},
			{`"`, chroma.LiteralString, chroma.Pop(1)},
		},
		"string": {
			{`[^"\\]+`, chroma.LiteralString, nil},
			{`\\.`, chroma.LiteralStringEscape, nil},
			{`"`, chroma.LiteralString, chroma.Pop(1)},
		},
	}
}
