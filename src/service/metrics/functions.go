package metrics

import (
	"context"

	"code-atlas/src/model"
	"code-atlas/src/service/lexer"
)

// anonymousName labels function literals, closures and arrow functions
const anonymousName = "<anonymous>"

// lookahead bounds how far a header scan walks to find a body
const lookahead = 96

// header is a detected function signature whose body opens at token body
type header struct {
	name   string
	line   int
	params int
	body   int
}

// stream wraps the token slice with the skipping helpers header detection
// needs. Groups are matched once up front so lookups stay linear on
// unbalanced input.
type stream struct {
	toks []lexer.Token
	// plain[i] and angled[i] close the group opened at i, or -1; angled
	// also nests angle brackets
	plain, angled []int
	// opener[j] is the plain group opened for the close at j, or -1
	opener []int
}

func newStream(toks []lexer.Token) *stream {
	s := &stream{toks: toks}
	s.plain, s.opener = s.pairs(false)
	s.angled, _ = s.pairs(true)
	return s
}

// pairs matches every group in one pass over the stream
func (s *stream) pairs(angles bool) (closer, opener []int) {
	closer = make([]int, len(s.toks))
	opener = make([]int, len(s.toks))
	var open []int
	for j := range s.toks {
		closer[j], opener[j] = -1, -1
		d := s.delta(j, angles)
		if d > 0 {
			open = append(open, j)
			continue
		}
		for ; d < 0 && len(open) > 0; d++ {
			top := open[len(open)-1]
			open = open[:len(open)-1]
			closer[top] = j
			opener[j] = top
		}
	}
	return closer, opener
}

// next returns the index of the first significant token at or after i, or len
func (s *stream) next(i int) int {
	for i < len(s.toks) && (s.toks[i].Kind == lexer.KindNewline || s.toks[i].Kind == lexer.KindComment) {
		i++
	}
	return i
}

// prev returns the index of the last significant token at or before i, or -1
func (s *stream) prev(i int) int {
	for i >= 0 && (s.toks[i].Kind == lexer.KindNewline || s.toks[i].Kind == lexer.KindComment) {
		i--
	}
	return i
}

func (s *stream) is(i int, text string) bool {
	return i >= 0 && i < len(s.toks) && s.toks[i].Is(text)
}

func (s *stream) kind(i int, k lexer.Kind) bool {
	return i >= 0 && i < len(s.toks) && s.toks[i].Kind == k
}

// matchGroup returns the index of the token closing the group opened at i.
// Parentheses, brackets and blocks nest; angle brackets nest when angles is set.
func (s *stream) matchGroup(i int, angles bool) int {
	if i < 0 || i >= len(s.toks) {
		return -1
	}
	if angles {
		return s.angled[i]
	}
	return s.plain[i]
}

func (s *stream) delta(j int, angles bool) int {
	tok := s.toks[j]
	switch tok.Kind {
	case lexer.KindBlockOpen:
		return 1
	case lexer.KindBlockClose:
		return -1
	case lexer.KindOperator:
		switch tok.Text {
		case "(", "[":
			return 1
		case ")", "]":
			return -1
		case "<":
			if angles {
				return 1
			}
		case ">":
			if angles {
				return -1
			}
		case ">>":
			if angles {
				return -2
			}
		}
	}
	return 0
}

// countParams counts the parameters between the parentheses at open and close
func (s *stream) countParams(open, close int, lang model.Language) int {
	angles := lang != model.LanguageGo && lang != model.LanguagePython
	var params [][]lexer.Token
	var cur []lexer.Token
	depth := 0

	for j := open + 1; j < close; j++ {
		tok := s.toks[j]
		if tok.Kind == lexer.KindNewline || tok.Kind == lexer.KindComment {
			continue
		}
		if depth == 0 && tok.Is(",") {
			params = append(params, cur)
			cur = nil
			continue
		}
		depth += s.delta(j, angles)
		cur = append(cur, tok)
	}
	params = append(params, cur)

	n := 0
	for i, p := range params {
		if len(p) == 0 {
			continue
		}
		if lang == model.LanguagePython {
			if len(p) == 1 && (p[0].Text == "*" || p[0].Text == "/") {
				continue
			}
			if i == 0 && (p[0].Text == "self" || p[0].Text == "cls") {
				continue
			}
		}
		n++
	}
	return n
}

// detectHeaders finds every function in the stream, keyed by the index of
// the block-open token that starts its body
func (e *Extractor) detectHeaders(ctx context.Context, s *stream, lang model.Language) (map[int]header, error) {
	found := make(map[int]header)

	add := func(h header, ok bool) {
		if !ok {
			return
		}
		if _, dup := found[h.body]; !dup {
			found[h.body] = h
		}
	}

	for i := range s.toks {
		if err := e.expired(ctx, i); err != nil {
			return nil, err
		}
		switch lang {
		case model.LanguagePython:
			add(s.pythonDef(i))
		case model.LanguageGo:
			add(s.goFunc(i))
		case model.LanguageRust:
			add(s.rustFn(i))
		case model.LanguageJavaScript:
			add(s.jsFunction(i))
			add(s.jsArrow(i))
			add(s.cLike(i, lang))
		case model.LanguageJava, model.LanguageCpp:
			add(s.cLike(i, lang))
		case model.LanguageBash:
			add(s.shellFunction(i))
		}
	}
	return found, nil
}

// bodyAfter finds the block-open that follows a parameter list closing at
// close, skipping the tokens skip accepts. With sameLine the body must open
// before the next newline.
func (s *stream) bodyAfter(close int, sameLine bool, skip func(j int) bool) (int, bool) {
	for j := close + 1; j < len(s.toks) && j <= close+lookahead; j++ {
		switch {
		case s.toks[j].Kind == lexer.KindNewline && sameLine:
			return -1, false
		case s.toks[j].Kind == lexer.KindNewline || s.toks[j].Kind == lexer.KindComment:
			continue
		case s.toks[j].Kind == lexer.KindBlockOpen:
			return j, true
		case skip != nil && skip(j):
			continue
		default:
			return -1, false
		}
	}
	return -1, false
}

func (s *stream) pythonDef(i int) (header, bool) {
	if !s.is(i, "def") {
		return header{}, false
	}
	name := s.next(i + 1)
	open := s.next(name + 1)
	if !s.kind(name, lexer.KindIdentifier) || !s.is(open, "(") {
		return header{}, false
	}
	close := s.matchGroup(open, false)
	if close < 0 {
		return header{}, false
	}

	// skip "-> annotation" up to the colon, then expect the indented body
	colon := -1
	for j := close + 1; j < len(s.toks) && j <= close+lookahead; j++ {
		if s.toks[j].Kind == lexer.KindNewline {
			break
		}
		if s.toks[j].Is(":") {
			colon = j
			break
		}
	}
	if colon < 0 {
		return header{}, false
	}
	j := colon + 1
	if j >= len(s.toks) || s.toks[j].Kind != lexer.KindNewline && s.toks[j].Kind != lexer.KindComment {
		// one-line body
		return header{}, false
	}
	body := s.next(j)
	if !s.kind(body, lexer.KindBlockOpen) {
		return header{}, false
	}
	return header{name: s.toks[name].Text, line: s.toks[i].Line, params: s.countParams(open, close, model.LanguagePython), body: body}, true
}

func (s *stream) goFunc(i int) (header, bool) {
	if !s.is(i, "func") {
		return header{}, false
	}
	name := anonymousName
	j := s.next(i + 1)

	if s.is(j, "(") {
		// method receiver or function literal
		recvClose := s.matchGroup(j, false)
		if recvClose < 0 {
			return header{}, false
		}
		k := s.next(recvClose + 1)
		if s.kind(k, lexer.KindIdentifier) && s.is(s.next(k+1), "(") {
			name = s.toks[k].Text
			j = s.next(k + 1)
		}
	} else if s.kind(j, lexer.KindIdentifier) {
		name = s.toks[j].Text
		j = s.next(j + 1)
		if s.is(j, "[") {
			// type parameters
			end := s.matchGroup(j, false)
			if end < 0 {
				return header{}, false
			}
			j = s.next(end + 1)
		}
	}

	if !s.is(j, "(") {
		return header{}, false
	}
	close := s.matchGroup(j, false)
	if close < 0 {
		return header{}, false
	}
	params := s.countParams(j, close, model.LanguageGo)

	// result list: a parenthesized group or a type expression up to the body
	body, ok := s.bodyAfter(close, true, func(k int) bool {
		return s.toks[k].Kind != lexer.KindBlockClose && !s.toks[k].Is(";") && !s.toks[k].Is("=") && !s.toks[k].Is(":=")
	})
	if !ok {
		return header{}, false
	}
	return header{name: name, line: s.toks[i].Line, params: params, body: body}, true
}

func (s *stream) rustFn(i int) (header, bool) {
	if !s.is(i, "fn") {
		return header{}, false
	}
	name := s.next(i + 1)
	if !s.kind(name, lexer.KindIdentifier) {
		return header{}, false
	}
	open := s.next(name + 1)
	if s.is(open, "<") {
		end := s.matchGroup(open, true)
		if end < 0 {
			return header{}, false
		}
		open = s.next(end + 1)
	}
	if !s.is(open, "(") {
		return header{}, false
	}
	close := s.matchGroup(open, true)
	if close < 0 {
		return header{}, false
	}

	// return type and where clause; a semicolon means a declaration without body
	body, ok := s.bodyAfter(close, false, func(k int) bool {
		return s.toks[k].Kind != lexer.KindBlockClose && !s.toks[k].Is(";")
	})
	if !ok {
		return header{}, false
	}
	return header{name: s.toks[name].Text, line: s.toks[i].Line, params: s.countParams(open, close, model.LanguageRust), body: body}, true
}

func (s *stream) jsFunction(i int) (header, bool) {
	if !s.is(i, "function") {
		return header{}, false
	}
	j := s.next(i + 1)
	if s.is(j, "*") {
		j = s.next(j + 1)
	}
	name := anonymousName
	if s.kind(j, lexer.KindIdentifier) {
		name = s.toks[j].Text
		j = s.next(j + 1)
	} else if assigned := s.assignedName(s.prev(i - 1)); assigned != "" {
		name = assigned
	}
	if s.is(j, "<") {
		end := s.matchGroup(j, true)
		if end < 0 {
			return header{}, false
		}
		j = s.next(end + 1)
	}
	if !s.is(j, "(") {
		return header{}, false
	}
	close := s.matchGroup(j, true)
	if close < 0 {
		return header{}, false
	}
	body, ok := s.bodyAfter(close, false, typeAnnotation(s))
	if !ok {
		return header{}, false
	}
	return header{name: name, line: s.toks[i].Line, params: s.countParams(j, close, model.LanguageJavaScript), body: body}, true
}

// jsArrow detects "(a, b) => {" and "x => {" with a block body
func (s *stream) jsArrow(i int) (header, bool) {
	if !s.is(i, "=>") {
		return header{}, false
	}
	body := s.next(i + 1)
	if !s.kind(body, lexer.KindBlockOpen) {
		return header{}, false
	}

	before := s.prev(i - 1)
	params := 1
	first := before
	if s.is(before, ")") {
		first = s.opener[before]
		if !s.is(first, "(") {
			return header{}, false
		}
		params = s.countParams(first, before, model.LanguageJavaScript)
	} else if !s.kind(before, lexer.KindIdentifier) {
		return header{}, false
	}

	lead := s.prev(first - 1)
	if s.is(lead, "async") {
		lead = s.prev(lead - 1)
	}
	name := s.assignedName(lead)
	if name == "" {
		name = anonymousName
	}
	return header{name: name, line: s.toks[first].Line, params: params, body: body}, true
}

// assignedName returns x for "x =" or "x:" ending at index i
func (s *stream) assignedName(i int) string {
	if s.is(i, "=") || s.is(i, ":") {
		if k := s.prev(i - 1); s.kind(k, lexer.KindIdentifier) {
			return s.toks[k].Text
		}
	}
	return ""
}

// typeAnnotation accepts TypeScript return annotations between ) and {
func typeAnnotation(s *stream) func(int) bool {
	return func(k int) bool {
		switch s.toks[k].Kind {
		case lexer.KindIdentifier, lexer.KindKeyword:
			return true
		case lexer.KindOperator:
			switch s.toks[k].Text {
			case ":", "<", ">", "[", "]", "|", "&", ".", ",", "?":
				return true
			}
		}
		return false
	}
}

var cLikeControl = map[string]bool{
	"if": true, "for": true, "while": true, "switch": true, "catch": true,
	"return": true, "new": true, "sizeof": true, "else": true, "do": true,
	"synchronized": true, "function": true,
}

// cLike detects "name(params) [qualifiers] {" for java, cpp and javascript methods
func (s *stream) cLike(i int, lang model.Language) (header, bool) {
	if !s.kind(i, lexer.KindIdentifier) {
		return header{}, false
	}
	open := s.next(i + 1)
	if lang != model.LanguageJavaScript && s.is(open, "<") {
		// explicit template arguments on a specialization
		end := s.matchGroup(open, true)
		if end < 0 {
			return header{}, false
		}
		open = s.next(end + 1)
	}
	if !s.is(open, "(") {
		return header{}, false
	}
	p := s.prev(i - 1)
	if p >= 0 && (s.toks[p].Is(".") || s.toks[p].Kind == lexer.KindKeyword && cLikeControl[s.toks[p].Text]) {
		return header{}, false
	}

	close := s.matchGroup(open, lang != model.LanguageJavaScript)
	if close < 0 {
		return header{}, false
	}

	if lang == model.LanguageJavaScript {
		// methods open their body directly or after a TypeScript return type
		if k := s.next(close + 1); !s.kind(k, lexer.KindBlockOpen) && !s.is(k, ":") {
			return header{}, false
		}
	}

	inInit := false
	body, ok := s.bodyAfter(close, false, func(k int) bool {
		tok := s.toks[k]
		switch tok.Kind {
		case lexer.KindKeyword:
			return !cLikeControl[tok.Text]
		case lexer.KindIdentifier:
			return true
		case lexer.KindLiteral, lexer.KindString:
			return inInit
		case lexer.KindOperator:
			switch tok.Text {
			case ":":
				inInit = lang == model.LanguageCpp
				return inInit
			case "::", ",", "&", "&&", "*", "->", "<", ">", ".", "[", "]":
				return true
			case "(", ")":
				return inInit
			}
		}
		return false
	})
	if !ok {
		return header{}, false
	}
	return header{name: s.toks[i].Text, line: s.toks[i].Line, params: s.countParams(open, close, lang), body: body}, true
}

// shellFunction detects "name() {" and "function name {"
func (s *stream) shellFunction(i int) (header, bool) {
	var name, j int
	switch {
	case s.is(i, "function"):
		name = s.next(i + 1)
		if !s.kind(name, lexer.KindIdentifier) {
			return header{}, false
		}
		j = s.next(name + 1)
		if s.is(j, "(") && s.is(s.next(j+1), ")") {
			j = s.next(s.next(j+1) + 1)
		}
	case s.kind(i, lexer.KindIdentifier) && s.is(s.next(i+1), "(") && s.is(s.next(s.next(i+1)+1), ")"):
		if p := s.prev(i - 1); s.is(p, "function") {
			return header{}, false
		}
		name = i
		j = s.next(s.next(s.next(i+1)+1) + 1)
	default:
		return header{}, false
	}
	if !s.kind(j, lexer.KindBlockOpen) {
		return header{}, false
	}
	return header{name: s.toks[name].Text, line: s.toks[i].Line, body: j}, true
}
