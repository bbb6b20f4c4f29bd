package lexer

import (
	"context"
	"strings"
	"unicode"
	"unicode/utf8"

	"code-atlas/src/model"
)

// cursor is the byte-level state shared by every scanner variant
type cursor struct {
	ctx        context.Context
	src        string
	pos        int
	line       int
	checkpoint int
	emitted    int
	err        error
	res        *Result
}

func newCursor(ctx context.Context, src string, checkpoint int) *cursor {
	if checkpoint <= 0 {
		checkpoint = DefaultCheckpoint
	}
	c := &cursor{
		ctx:        ctx,
		src:        src,
		line:       1,
		checkpoint: checkpoint,
		res:        &Result{Confidence: model.ConfidenceFull},
	}
	c.pos = len(src) - len(strings.TrimPrefix(src, "\uFEFF"))
	return c
}

// done reports whether scanning should stop
func (c *cursor) done() bool {
	return c.err != nil || c.pos >= len(c.src)
}

func (c *cursor) peek(off int) byte {
	if c.pos+off < len(c.src) {
		return c.src[c.pos+off]
	}
	return 0
}

func (c *cursor) hasPrefix(s string) bool {
	return strings.HasPrefix(c.src[c.pos:], s)
}

func (c *cursor) advance() {
	if c.src[c.pos] == '\n' {
		c.line++
	}
	c.pos++
}

func (c *cursor) advanceN(n int) {
	for i := 0; i < n && c.pos < len(c.src); i++ {
		c.advance()
	}
}

// emit appends src[start:pos] as a token and checks the context every
// checkpoint tokens
func (c *cursor) emit(kind Kind, start, startLine int) {
	c.emitText(kind, c.src[start:c.pos], startLine)
}

func (c *cursor) emitText(kind Kind, text string, startLine int) {
	endLine := c.line
	if kind == KindNewline || endLine < startLine {
		endLine = startLine
	}
	// a token ending on a newline byte does not occupy the next line
	if endLine > startLine && strings.HasSuffix(text, "\n") {
		endLine--
	}
	c.res.Tokens = append(c.res.Tokens, Token{Kind: kind, Text: text, Line: startLine, EndLine: endLine})

	c.emitted++
	if c.emitted%c.checkpoint == 0 {
		if err := c.ctx.Err(); err != nil {
			c.err = err
		}
	}
}

// skipSpace consumes horizontal whitespace
func (c *cursor) skipSpace() {
	for c.pos < len(c.src) {
		switch c.src[c.pos] {
		case ' ', '\t', '\r', '\f', '\v':
			c.pos++
		default:
			return
		}
	}
}

// newline emits a newline token if the cursor is on one
func (c *cursor) newline() bool {
	if c.src[c.pos] != '\n' {
		return false
	}
	line := c.line
	c.advance()
	c.emitText(KindNewline, "\n", line)
	return true
}

// malformed skips an unparsable run to the end of the line if the cursor is
// on a control byte or invalid UTF-8
func (c *cursor) malformed() bool {
	b := c.src[c.pos]
	bad := b < 0x20 || b == 0x7F
	if b >= utf8.RuneSelf {
		r, size := utf8.DecodeRuneInString(c.src[c.pos:])
		bad = r == utf8.RuneError && size == 1
	}
	if !bad {
		return false
	}

	c.res.Confidence = model.ConfidenceReduced
	if n := len(c.res.MalformedLines); n == 0 || c.res.MalformedLines[n-1] != c.line {
		c.res.MalformedLines = append(c.res.MalformedLines, c.line)
	}
	c.skipToEOL()
	return true
}

func (c *cursor) skipToEOL() {
	if i := strings.IndexByte(c.src[c.pos:], '\n'); i >= 0 {
		c.pos += i
	} else {
		c.pos = len(c.src)
	}
}

func (c *cursor) runeAt() (rune, int) {
	b := c.src[c.pos]
	if b < utf8.RuneSelf {
		return rune(b), 1
	}
	return utf8.DecodeRuneInString(c.src[c.pos:])
}

func isIdentStart(r rune, extra string) bool {
	return r == '_' || unicode.IsLetter(r) || strings.ContainsRune(extra, r)
}

func isIdentPart(r rune, extra string) bool {
	return isIdentStart(r, extra) || unicode.IsDigit(r)
}

// atIdent reports whether an identifier starts at the cursor
func (c *cursor) atIdent(extra string) bool {
	r, _ := c.runeAt()
	return isIdentStart(r, extra)
}

// scanIdent consumes an identifier and returns its text
func (c *cursor) scanIdent(extra string) string {
	start := c.pos
	for c.pos < len(c.src) {
		r, size := c.runeAt()
		if !isIdentPart(r, extra) {
			break
		}
		c.pos += size
	}
	return c.src[start:c.pos]
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

// atNumber reports whether a numeric literal starts at the cursor
func (c *cursor) atNumber() bool {
	b := c.src[c.pos]
	return isDigit(b) || (b == '.' && isDigit(c.peek(1)))
}

// scanNumber consumes a numeric literal including radix prefixes, digit
// separators, exponents and type suffixes
func (c *cursor) scanNumber() {
	hex := c.hasPrefix("0x") || c.hasPrefix("0X")
	for c.pos < len(c.src) {
		b := c.src[c.pos]
		switch {
		case isDigit(b), b == '_', b == '.' && isDigit(c.peek(1)):
			c.pos++
		case (b == 'e' || b == 'E' || b == 'p' || b == 'P') && !hex && (c.peek(1) == '+' || c.peek(1) == '-'):
			c.pos += 2
		case b == '\'' && isDigit(c.peek(1)):
			// C++14 digit separator
			c.pos++
		case b < utf8.RuneSelf && (unicode.IsLetter(rune(b))):
			c.pos++
		default:
			return
		}
	}
}

// scanQuoted consumes a quoted run starting at the opening delimiter. An
// unterminated single-line string ends at the end of the line.
func (c *cursor) scanQuoted(delim string, escapes, multiline bool) {
	c.advanceN(len(delim))
	for c.pos < len(c.src) {
		if escapes && c.src[c.pos] == '\\' && c.pos+1 < len(c.src) {
			c.advanceN(2)
			continue
		}
		if c.hasPrefix(delim) {
			c.advanceN(len(delim))
			return
		}
		if c.src[c.pos] == '\n' && !multiline {
			return
		}
		c.advance()
	}
}

// scanLineComment consumes up to, not including, the newline
func (c *cursor) scanLineComment() {
	c.skipToEOL()
}

// scanBlockComment consumes a block comment; nested comments are tracked
// when the language allows them
func (c *cursor) scanBlockComment(open, close string, nested bool) {
	depth := 0
	for c.pos < len(c.src) {
		switch {
		case c.hasPrefix(open) && (nested || depth == 0):
			depth++
			c.advanceN(len(open))
		case c.hasPrefix(close):
			depth--
			c.advanceN(len(close))
			if depth == 0 {
				return
			}
		default:
			c.advance()
		}
	}
}

// scanOperator consumes the longest operator from ops, else one rune
func (c *cursor) scanOperator(ops []string) {
	for _, op := range ops {
		if c.hasPrefix(op) {
			c.pos += len(op)
			return
		}
	}
	_, size := c.runeAt()
	c.pos += size
}
