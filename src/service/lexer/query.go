package lexer

import (
	"context"
	"strings"
)

var sqlOperators = []string{"->>", "<>", "!=", "<=", ">=", "||", "::", ":=", "->", "=>", "$$"}

// words after BEGIN that mean a transaction rather than a block
var sqlTransactionWords = set("TRANSACTION", "WORK", "TRAN", "DEFERRED", "IMMEDIATE", "EXCLUSIVE")

// words after END that close a construct which never opened a block
var sqlUnblockedEnds = set("IF", "LOOP", "WHILE", "REPEAT", "FOR")

// queryScanner handles sql. Keywords are case-insensitive and emitted
// upper-cased; BEGIN and CASE open blocks, END closes them.
type queryScanner struct {
	checkpoint int
}

func (s *queryScanner) Family() string { return "query" }

func (s *queryScanner) Scan(ctx context.Context, src string) (*Result, error) {
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
		case c.hasPrefix("--"):
			c.scanLineComment()
			c.emit(KindComment, start, line)
		case c.hasPrefix("/*"):
			c.scanBlockComment("/*", "*/", false)
			c.emit(KindComment, start, line)
		case b == '\'':
			c.scanQuoted("'", true, true)
			c.emit(KindString, start, line)
		case b == '"' || b == '`':
			c.scanQuoted(string(b), false, false)
			c.emit(KindIdentifier, start, line)
		case c.atNumber():
			c.scanNumber()
			c.emit(KindLiteral, start, line)
		case c.atIdent("@$#"):
			word := c.scanIdent("@$#")
			upper := strings.ToUpper(word)
			if !sqlKeywords[upper] {
				c.emit(KindIdentifier, start, line)
				continue
			}
			c.emitText(s.keywordKind(c, upper), upper, line)
		default:
			c.scanOperator(sqlOperators)
			c.emit(KindOperator, start, line)
		}
	}

	return finish(c)
}

func (s *queryScanner) keywordKind(c *cursor, word string) Kind {
	if prevSignificant(c.res.Tokens).Text == "END" {
		// END CASE, END IF and friends name what END already closed
		return KindKeyword
	}
	switch word {
	case "CASE":
		return KindBlockOpen
	case "BEGIN":
		next := s.peekWord(c)
		if next == "" || next == ";" || sqlTransactionWords[next] {
			return KindKeyword
		}
		return KindBlockOpen
	case "END":
		if sqlUnblockedEnds[s.peekWord(c)] {
			return KindKeyword
		}
		return KindBlockClose
	}
	return KindKeyword
}

// peekWord returns the next upper-cased word, or the next punctuation byte,
// without moving the cursor
func (s *queryScanner) peekWord(c *cursor) string {
	i := c.pos
	for i < len(c.src) && (c.src[i] == ' ' || c.src[i] == '\t' || c.src[i] == '\r' || c.src[i] == '\n') {
		i++
	}
	if i >= len(c.src) {
		return ""
	}
	j := i
	for j < len(c.src) && (isDigit(c.src[j]) || c.src[j] == '_' ||
		(c.src[j]|0x20 >= 'a' && c.src[j]|0x20 <= 'z')) {
		j++
	}
	if j == i {
		return c.src[i : i+1]
	}
	return strings.ToUpper(c.src[i:j])
}

func prevSignificant(tokens []Token) Token {
	for i := len(tokens) - 1; i >= 0; i-- {
		if tokens[i].Kind != KindNewline && tokens[i].Kind != KindComment {
			return tokens[i]
		}
	}
	return Token{}
}
