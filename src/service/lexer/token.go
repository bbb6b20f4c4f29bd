package lexer

import "code-atlas/src/model"

// Kind classifies a token
type Kind int

const (
	KindKeyword Kind = iota
	KindIdentifier
	KindOperator
	KindLiteral
	KindComment
	KindString
	KindNewline
	KindBlockOpen
	KindBlockClose
)

var kindNames = [...]string{
	KindKeyword:    "keyword",
	KindIdentifier: "identifier",
	KindOperator:   "operator",
	KindLiteral:    "literal",
	KindComment:    "comment",
	KindString:     "string",
	KindNewline:    "newline",
	KindBlockOpen:  "block-open",
	KindBlockClose: "block-close",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Token is one lexical unit. EndLine differs from Line only for tokens that
// span lines (block comments, multi-line strings).
type Token struct {
	Kind    Kind
	Text    string
	Line    int
	EndLine int
}

// IsCode reports whether the token counts toward lines of code
func (t Token) IsCode() bool {
	return t.Kind != KindComment && t.Kind != KindNewline
}

// Is reports whether the token is the given keyword or operator
func (t Token) Is(text string) bool {
	return (t.Kind == KindKeyword || t.Kind == KindOperator) && t.Text == text
}

// Result is the token stream for one file
type Result struct {
	Tokens         []Token
	MalformedLines []int
	Confidence     model.Confidence
}

// CodeLines returns the set of 1-based lines holding at least one code token
func (r *Result) CodeLines() map[int]bool {
	lines := make(map[int]bool)
	for _, tok := range r.Tokens {
		if !tok.IsCode() {
			continue
		}
		for l := tok.Line; l <= tok.EndLine; l++ {
			lines[l] = true
		}
	}
	return lines
}
