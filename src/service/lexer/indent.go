package lexer

import (
	"context"
	"strings"
)

var pythonOperators = []string{
	"**=", "//=", ">>=", "<<=", "...", "->", ":=", "**", "//", "==", "!=", "<=",
	">=", "<<", ">>", "+=", "-=", "*=", "/=", "%=", "&=", "|=", "^=", "@=",
}

var pythonStringPrefixes = set("r", "u", "b", "f", "br", "rb", "fr", "rf")

// indentScanner handles python. Block tokens are synthesized from
// indentation changes outside brackets; they carry empty text.
type indentScanner struct {
	checkpoint int
}

func (s *indentScanner) Family() string { return "indent" }

func (s *indentScanner) Scan(ctx context.Context, src string) (*Result, error) {
	c := newCursor(ctx, src, s.checkpoint)
	stack := []int{0}
	brackets := 0
	lineStart := true

	for !c.done() {
		if lineStart {
			lineStart = false
			stack = s.indent(c, stack)
			if c.done() {
				break
			}
		}

		c.skipSpace()
		if c.done() {
			break
		}
		if c.newline() {
			lineStart = brackets == 0
			continue
		}
		if c.malformed() {
			continue
		}

		start, line := c.pos, c.line
		b := c.src[c.pos]

		switch {
		case b == '#':
			c.scanLineComment()
			c.emit(KindComment, start, line)
		case b == '\\' && c.peek(1) == '\n':
			// explicit line joining
			c.advanceN(2)
		case b == '"' || b == '\'':
			scanPythonString(c)
			c.emit(KindString, start, line)
		case c.atNumber():
			c.scanNumber()
			c.emit(KindLiteral, start, line)
		case c.atIdent(""):
			word := c.scanIdent("")
			switch {
			case !c.done() && (c.src[c.pos] == '"' || c.src[c.pos] == '\'') && pythonStringPrefixes[strings.ToLower(word)]:
				scanPythonString(c)
				c.emit(KindString, start, line)
			case pythonKeywords[word]:
				c.emit(KindKeyword, start, line)
			default:
				c.emit(KindIdentifier, start, line)
			}
		default:
			switch b {
			case '(', '[', '{':
				brackets++
			case ')', ']', '}':
				if brackets > 0 {
					brackets--
				}
			}
			c.scanOperator(pythonOperators)
			c.emit(KindOperator, start, line)
		}
	}

	last := c.line
	if strings.HasSuffix(src, "\n") && last > 1 {
		last--
	}
	for len(stack) > 1 {
		stack = stack[:len(stack)-1]
		c.emitText(KindBlockClose, "", last)
	}

	return finish(c)
}

// indent measures the indentation of a logical line and emits block tokens
// for changes. Blank and comment-only lines leave the stack untouched.
func (s *indentScanner) indent(c *cursor, stack []int) []int {
	width := 0
measure:
	for !c.done() {
		switch c.src[c.pos] {
		case ' ':
			width++
		case '\t':
			width += 8 - width%8
		case '\f':
			width = 0
		default:
			break measure
		}
		c.pos++
	}
	if c.done() {
		return stack
	}
	switch c.src[c.pos] {
	case '\n', '#', '\r':
		return stack
	}

	top := stack[len(stack)-1]
	switch {
	case width > top:
		stack = append(stack, width)
		c.emitText(KindBlockOpen, "", c.line)
	case width < top:
		for len(stack) > 1 && stack[len(stack)-1] > width {
			stack = stack[:len(stack)-1]
			c.emitText(KindBlockClose, "", c.line)
		}
		if stack[len(stack)-1] < width {
			stack = append(stack, width)
			c.emitText(KindBlockOpen, "", c.line)
		}
	}
	return stack
}

// scanPythonString consumes a single or triple quoted string at the cursor
func scanPythonString(c *cursor) {
	q := c.src[c.pos]
	triple := strings.Repeat(string(q), 3)
	if c.hasPrefix(triple) {
		c.scanQuoted(triple, true, true)
		return
	}
	c.scanQuoted(string(q), true, false)
}
