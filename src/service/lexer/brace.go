package lexer

import (
	"context"
	"strings"

	"code-atlas/src/model"
)

var braceOperators = []string{
	">>>=", "...", "<<=", ">>=", "===", "!==", "**=", "&&=", "||=", "??=", "<=>",
	"::", "->", "=>", "&&", "||", "==", "!=", "<=", ">=", "++", "--", "+=", "-=",
	"*=", "/=", "%=", "&=", "|=", "^=", "<<", ":=", "<-", "?.", "??", "?:", "..", "**",
}

// braceScanner handles the C family: go, javascript, java, cpp and rust
type braceScanner struct {
	lang       model.Language
	keywords   map[string]bool
	identExtra string
	checkpoint int
}

func newBraceScanner(lang model.Language, checkpoint int) *braceScanner {
	s := &braceScanner{
		lang:       lang,
		keywords:   braceKeywords[lang],
		checkpoint: checkpoint,
	}
	if lang == model.LanguageJavaScript {
		s.identExtra = "$"
	}
	return s
}

func (s *braceScanner) Family() string { return "brace" }

func (s *braceScanner) Scan(ctx context.Context, src string) (*Result, error) {
	c := newCursor(ctx, src, s.checkpoint)

	for !c.done() {
		c.skipSpace()
		if c.done() {
			break
		}
		if c.newline() || c.malformed() {
			continue
		}

		start, line := c.pos, c.line
		b := c.src[c.pos]

		switch {
		case c.hasPrefix("//"):
			c.scanLineComment()
			c.emit(KindComment, start, line)
		case c.hasPrefix("/*"):
			c.scanBlockComment("/*", "*/", s.lang == model.LanguageRust)
			c.emit(KindComment, start, line)
		case b == '"':
			c.scanQuoted(`"`, true, false)
			c.emit(KindString, start, line)
		case b == '\'':
			c.emit(s.scanApostrophe(c), start, line)
		case b == '`' && s.lang == model.LanguageGo:
			c.scanQuoted("`", false, true)
			c.emit(KindString, start, line)
		case b == '`' && s.lang == model.LanguageJavaScript:
			scanTemplate(c)
			c.emit(KindString, start, line)
		case b == '{':
			c.advance()
			c.emit(KindBlockOpen, start, line)
		case b == '}':
			c.advance()
			c.emit(KindBlockClose, start, line)
		case c.atNumber():
			c.scanNumber()
			c.emit(KindLiteral, start, line)
		case c.atIdent(s.identExtra):
			word := c.scanIdent(s.identExtra)
			switch {
			case s.scanPrefixedString(c, word):
				c.emit(KindString, start, line)
			case s.keywords[word]:
				c.emit(KindKeyword, start, line)
			default:
				c.emit(KindIdentifier, start, line)
			}
		case b == '/' && s.lang == model.LanguageJavaScript && regexAllowed(c.res.Tokens) && scanRegex(c):
			c.emit(KindString, start, line)
		default:
			c.scanOperator(braceOperators)
			c.emit(KindOperator, start, line)
		}
	}

	return finish(c)
}

// scanApostrophe consumes a char literal, or a rust lifetime which is
// returned as an identifier
func (s *braceScanner) scanApostrophe(c *cursor) Kind {
	if s.lang != model.LanguageRust || c.peek(1) == '\\' {
		c.scanQuoted("'", true, false)
		return KindString
	}

	c.advance()
	if c.done() {
		return KindOperator
	}
	_, size := c.runeAt()
	if c.peek(size) == '\'' {
		c.advanceN(size + 1)
		return KindString
	}
	if c.atIdent("") {
		c.scanIdent("")
		return KindIdentifier
	}
	return KindOperator
}

// scanPrefixedString handles string literals introduced by an identifier
// prefix: rust raw and byte strings, cpp raw strings
func (s *braceScanner) scanPrefixedString(c *cursor, word string) bool {
	if c.done() {
		return false
	}
	next := c.src[c.pos]

	switch s.lang {
	case model.LanguageRust:
		switch {
		case (word == "r" || word == "br" || word == "cr") && (next == '"' || next == '#'):
			hashes := 0
			for c.peek(hashes) == '#' {
				hashes++
			}
			if c.peek(hashes) != '"' {
				return false
			}
			c.advanceN(hashes + 1)
			closing := `"` + strings.Repeat("#", hashes)
			if end := strings.Index(c.src[c.pos:], closing); end >= 0 {
				c.advanceN(end + len(closing))
			} else {
				c.advanceN(len(c.src) - c.pos)
			}
			return true
		case (word == "b" || word == "c") && next == '"':
			c.scanQuoted(`"`, true, true)
			return true
		case word == "b" && next == '\'':
			c.scanQuoted("'", true, false)
			return true
		}
	case model.LanguageCpp:
		if strings.HasSuffix(word, "R") && len(word) <= 3 && next == '"' {
			open := strings.IndexByte(c.src[c.pos:], '(')
			if open < 0 || open > 17 {
				return false
			}
			delim := c.src[c.pos+1 : c.pos+open]
			closing := ")" + delim + `"`
			c.advanceN(open + 1)
			end := strings.Index(c.src[c.pos:], closing)
			if end < 0 {
				c.advanceN(len(c.src) - c.pos)
			} else {
				c.advanceN(end + len(closing))
			}
			return true
		}
	}
	return false
}

// scanTemplate consumes a javascript template literal including nested
// ${...} substitutions
func scanTemplate(c *cursor) {
	c.advance()
	depth := 0
	for !c.done() {
		ch := c.src[c.pos]
		switch {
		case ch == '\\':
			c.advanceN(2)
		case depth == 0 && ch == '`':
			c.advance()
			return
		case depth == 0 && c.hasPrefix("${"):
			depth = 1
			c.advanceN(2)
		case depth > 0 && ch == '{':
			depth++
			c.advance()
		case depth > 0 && ch == '}':
			depth--
			c.advance()
		case depth > 0 && (ch == '"' || ch == '\''):
			c.scanQuoted(string(ch), true, false)
		case depth > 0 && ch == '`':
			scanTemplate(c)
		default:
			c.advance()
		}
	}
}

var regexPrecedingKeywords = set(
	"return", "typeof", "case", "do", "else", "in", "of", "new", "delete",
	"void", "throw", "yield", "await", "instanceof",
)

// regexAllowed decides whether a slash starts a regex literal or divides,
// based on the previous significant token
func regexAllowed(tokens []Token) bool {
	for i := len(tokens) - 1; i >= 0; i-- {
		tok := tokens[i]
		switch tok.Kind {
		case KindNewline, KindComment:
			continue
		case KindOperator:
			return tok.Text != ")" && tok.Text != "]"
		case KindKeyword:
			return regexPrecedingKeywords[tok.Text]
		case KindBlockOpen, KindBlockClose:
			return true
		default:
			return false
		}
	}
	return true
}

// scanRegex consumes a regex literal. It rewinds and returns false when no
// closing slash is found on the same line.
func scanRegex(c *cursor) bool {
	start := c.pos
	c.advance()
	inClass := false
	for !c.done() {
		switch c.src[c.pos] {
		case '\n':
			c.pos = start
			return false
		case '\\':
			if c.peek(1) == '\n' {
				c.pos = start
				return false
			}
			c.advanceN(2)
			continue
		case '[':
			inClass = true
		case ']':
			inClass = false
		case '/':
			if !inClass {
				c.advance()
				for !c.done() && c.atIdent("") {
					c.advance()
				}
				return true
			}
		}
		c.advance()
	}
	c.pos = start
	return false
}
