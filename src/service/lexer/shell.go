package lexer

import (
	"context"
	"strings"
)

var shellOperators = []string{
	";;&", "$((", "<<<", "<<-", ";;", ";&", "&&", "||", "|&", "<<", ">>", ">&",
	"<&", "&>", "$(", "((", "))", "[[", "]]", "==", "!=", "=~", "<=", ">=",
}

// shellScanner handles bash. Blocks open on then/do/{ and case..in, and close
// on fi/done/esac/}; elif and else close the previous branch.
type shellScanner struct {
	checkpoint int
}

func (s *shellScanner) Family() string { return "shell" }

type shellState struct {
	cmdPos      bool
	pendingCase int
	funcName    bool
	heredocs    []heredoc
}

type heredoc struct {
	delim     string
	stripTabs bool
}

func (s *shellScanner) Scan(ctx context.Context, src string) (*Result, error) {
	c := newCursor(ctx, src, s.checkpoint)
	st := &shellState{cmdPos: true}

	for !c.done() {
		c.skipSpace()
		if c.done() {
			break
		}
		if c.newline() {
			st.cmdPos = true
			if len(st.heredocs) > 0 {
				s.scanHeredocs(c, st)
			}
			continue
		}
		if c.malformed() {
			continue
		}

		start, line := c.pos, c.line
		b := c.src[c.pos]

		switch {
		case b == '#' && atWordStart(c):
			c.scanLineComment()
			c.emit(KindComment, start, line)
		case b == '\\':
			// escaped character or line continuation
			c.advanceN(2)
		case b == '\'':
			c.scanQuoted("'", false, true)
			c.emit(KindString, start, line)
			st.cmdPos = false
		case b == '"' || b == '`':
			c.scanQuoted(string(b), true, true)
			c.emit(KindString, start, line)
			st.cmdPos = false
		case b == '$' && c.peek(1) == '{':
			scanParamExpansion(c)
			c.emit(KindIdentifier, start, line)
			st.cmdPos = false
		case b == '$' && c.peek(1) != '(' && c.peek(1) != 0:
			c.advance()
			if c.atIdent("") {
				c.scanIdent("")
			} else {
				c.advance()
			}
			c.emit(KindIdentifier, start, line)
			st.cmdPos = false
		case c.atNumber():
			c.scanNumber()
			if !c.done() && (c.src[c.pos] == '>' || c.src[c.pos] == '<') {
				// file descriptor redirection such as 2> or 2>&1
				s.scanRedirect(c)
				c.emit(KindOperator, start, line)
				continue
			}
			c.emit(KindLiteral, start, line)
			st.cmdPos = false
		case c.atIdent(""):
			word := c.scanIdent("")
			s.word(c, st, word, start, line)
		case b == '{' && st.cmdPos:
			c.advance()
			c.emit(KindBlockOpen, start, line)
		case b == '}' && st.cmdPos:
			c.advance()
			c.emit(KindBlockClose, start, line)
		default:
			s.operator(c, st, start, line)
		}
	}

	return finish(c)
}

func (s *shellScanner) word(c *cursor, st *shellState, word string, start, line int) {
	if word == "in" && st.pendingCase > 0 {
		st.pendingCase--
		c.emit(KindBlockOpen, start, line)
		st.cmdPos = true
		return
	}
	if !st.cmdPos || !shellKeywords[word] {
		kind := KindIdentifier
		if word == "in" {
			kind = KindKeyword
		}
		c.emit(kind, start, line)
		// "function name {" opens its body in command position
		st.cmdPos = st.funcName
		st.funcName = false
		return
	}

	switch word {
	case "then", "do":
		c.emit(KindBlockOpen, start, line)
	case "fi", "done", "esac":
		c.emit(KindBlockClose, start, line)
	case "elif":
		c.emitText(KindBlockClose, "", line)
		c.emit(KindKeyword, start, line)
	case "else":
		c.emitText(KindBlockClose, "", line)
		c.emit(KindKeyword, start, line)
		c.emitText(KindBlockOpen, "", line)
	default:
		c.emit(KindKeyword, start, line)
	}

	switch word {
	case "case":
		st.pendingCase++
		st.cmdPos = false
	case "function":
		st.funcName = true
		st.cmdPos = false
	case "for", "select", "return", "local", "export", "readonly", "declare", "break", "continue":
		st.cmdPos = false
	default:
		st.cmdPos = true
	}
}

func (s *shellScanner) operator(c *cursor, st *shellState, start, line int) {
	c.scanOperator(shellOperators)
	op := c.src[start:c.pos]

	switch op {
	case "<<", "<<-":
		s.queueHeredoc(c, st, op == "<<-")
	case ">&", "<&":
		for !c.done() && (isDigit(c.src[c.pos]) || c.src[c.pos] == '-') {
			c.advance()
		}
	}
	c.emit(KindOperator, start, line)

	switch op {
	case ";", ";;", ";&", ";;&", "&", "&&", "||", "|", "|&", "(", ")", "!", "{", "}", "$(", "((":
		st.cmdPos = true
	default:
		st.cmdPos = false
	}
}

func (s *shellScanner) scanRedirect(c *cursor) {
	c.scanOperator([]string{">>", ">&", "<&", "<<", ">", "<"})
	for !c.done() && (isDigit(c.src[c.pos]) || c.src[c.pos] == '-') {
		c.advance()
	}
}

// queueHeredoc reads the delimiter word after << so the body can be consumed
// as a single string once the current line ends
func (s *shellScanner) queueHeredoc(c *cursor, st *shellState, stripTabs bool) {
	c.skipSpace()
	if c.done() {
		return
	}
	var delim string
	switch q := c.src[c.pos]; {
	case q == '\'' || q == '"':
		end := strings.IndexByte(c.src[c.pos+1:], q)
		if end < 0 {
			return
		}
		delim = c.src[c.pos+1 : c.pos+1+end]
		c.advanceN(end + 2)
	case c.atIdent(""):
		delim = c.scanIdent("")
	default:
		return
	}
	st.heredocs = append(st.heredocs, heredoc{delim: delim, stripTabs: stripTabs})
}

// scanHeredocs consumes pending heredoc bodies, each up to and including
// its delimiter line
func (s *shellScanner) scanHeredocs(c *cursor, st *shellState) {
	for _, h := range st.heredocs {
		start, line := c.pos, c.line
		for !c.done() {
			eol := strings.IndexByte(c.src[c.pos:], '\n')
			text := c.src[c.pos:]
			if eol >= 0 {
				text = text[:eol]
			}
			if h.stripTabs {
				text = strings.TrimLeft(text, "\t")
			}
			closing := strings.TrimRight(text, "\r") == h.delim
			if eol < 0 {
				c.pos = len(c.src)
			} else {
				c.advanceN(eol + 1)
			}
			if closing {
				break
			}
		}
		if c.pos > start {
			c.emit(KindString, start, line)
		}
	}
	st.heredocs = st.heredocs[:0]
}

// scanParamExpansion consumes ${...} with nested expansions
func scanParamExpansion(c *cursor) {
	depth := 0
	for !c.done() {
		switch c.src[c.pos] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				c.advance()
				return
			}
		case '\n':
			return
		}
		c.advance()
	}
}

// atWordStart reports whether # begins a comment rather than sitting inside
// a word such as $# or a#b
func atWordStart(c *cursor) bool {
	if c.pos == 0 {
		return true
	}
	switch c.src[c.pos-1] {
	case ' ', '\t', '\n', ';', '|', '&', '(', ')':
		return true
	}
	return false
}
