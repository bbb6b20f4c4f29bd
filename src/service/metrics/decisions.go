package metrics

import (
	"code-atlas/src/model"
	"code-atlas/src/service/lexer"
)

var decisionKeywords = map[model.Language]map[string]bool{
	model.LanguagePython:     {"if": true, "elif": true, "for": true, "while": true, "except": true, "and": true, "or": true, "case": true},
	model.LanguageGo:         {"if": true, "for": true, "case": true},
	model.LanguageJavaScript: {"if": true, "for": true, "while": true, "case": true, "catch": true},
	model.LanguageJava:       {"if": true, "for": true, "while": true, "case": true, "catch": true},
	model.LanguageCpp:        {"if": true, "for": true, "while": true, "case": true, "catch": true},
	model.LanguageRust:       {"if": true, "for": true, "while": true},
	model.LanguageBash:       {"if": true, "elif": true, "for": true, "while": true, "until": true, "select": true},
}

var decisionOperators = map[model.Language]map[string]bool{
	model.LanguageGo:         {"&&": true, "||": true},
	model.LanguageJavaScript: {"&&": true, "||": true, "?": true},
	model.LanguageJava:       {"&&": true, "||": true, "?": true},
	model.LanguageCpp:        {"&&": true, "||": true, "?": true},
	// match arms; ? is error propagation, not a branch
	model.LanguageRust: {"&&": true, "||": true, "=>": true},
	// case arms end with ;; (or ;& and ;;& fallthroughs)
	model.LanguageBash: {"&&": true, "||": true, ";;": true, ";&": true, ";;&": true},
}

// decisionRule returns the predicate that marks token i as a decision point.
// Catch-all arms add no decision in any language: default labels are not
// keywords here, and Rust "_ =>", Python "case _:" and the last shell arm
// are skipped explicitly.
func decisionRule(lang model.Language, s *stream) func(i int) bool {
	keywords := decisionKeywords[lang]
	operators := decisionOperators[lang]

	return func(i int) bool {
		tok := s.toks[i]
		switch tok.Kind {
		case lexer.KindKeyword:
			if !keywords[tok.Text] {
				return false
			}
			if lang == model.LanguagePython && tok.Text == "case" {
				return !s.wildcardCase(i)
			}
			return true
		case lexer.KindOperator:
			if !operators[tok.Text] {
				return false
			}
			switch lang {
			case model.LanguageBash:
				// a ;; directly before esac ends the last arm
				if tok.Text != "&&" && tok.Text != "||" {
					n := s.next(i + 1)
					return !(n < len(s.toks) && s.toks[n].Kind == lexer.KindBlockClose && s.toks[n].Text == "esac")
				}
			case model.LanguageRust:
				switch tok.Text {
				case "=>":
					return !s.wildcardArm(i)
				case "&&", "||":
					// otherwise a closure "|| body" or a reference "&&x"
					return s.endsOperand(s.prev(i - 1))
				}
			case model.LanguageCpp:
				if tok.Text == "&&" {
					return !s.rvalueReference(i)
				}
			}
			return true
		}
		return false
	}
}

// wildcardCase reports a Python "case _:" arm
func (s *stream) wildcardCase(i int) bool {
	w := s.next(i + 1)
	return w < len(s.toks) && s.toks[w].Text == "_" && s.is(s.next(w+1), ":")
}

// wildcardArm reports a Rust "_ =>" arm ending at the arrow i
func (s *stream) wildcardArm(i int) bool {
	w := s.prev(i - 1)
	if w < 0 || s.toks[w].Text != "_" {
		return false
	}
	before := s.prev(w - 1)
	return before < 0 || s.is(before, ",") || s.is(before, ";") ||
		s.kind(before, lexer.KindBlockOpen) || s.kind(before, lexer.KindBlockClose)
}

// endsOperand reports whether token i can end an expression, which makes a
// following && or || a binary operator
func (s *stream) endsOperand(i int) bool {
	if i < 0 {
		return false
	}
	tok := s.toks[i]
	switch tok.Kind {
	case lexer.KindIdentifier, lexer.KindLiteral, lexer.KindString:
		return true
	case lexer.KindKeyword:
		return tok.Text == "self" || tok.Text == "Self"
	case lexer.KindOperator:
		return tok.Text == ")" || tok.Text == "]" || tok.Text == "?"
	}
	return false
}

// rvalueReference reports a C++ "&&" that declares a reference: after a
// type keyword (auto&&, int&&), after a template type (vector<T>&&), or
// after a type name that opens a declaration statement, a range-for or a
// lambda parameter list
func (s *stream) rvalueReference(i int) bool {
	p := s.prev(i - 1)
	switch {
	case p < 0:
		return false
	case s.toks[p].Kind == lexer.KindKeyword:
		return s.toks[p].Text != "this"
	case s.is(p, ">") || s.is(p, ">>"):
		return true
	case s.toks[p].Kind != lexer.KindIdentifier:
		return false
	}

	// walk back over a qualified name a::b::C
	start := p
	for q := s.prev(start - 1); s.is(q, "::"); q = s.prev(start - 1) {
		name := s.prev(q - 1)
		if !s.kind(name, lexer.KindIdentifier) {
			break
		}
		start = name
	}

	name := s.next(i + 1)
	if !s.kind(name, lexer.KindIdentifier) {
		return false
	}
	after := s.next(name + 1)

	lead := s.prev(start - 1)
	switch {
	case lead < 0, s.is(lead, ";"), s.kind(lead, lexer.KindBlockOpen), s.kind(lead, lexer.KindBlockClose):
		return s.is(after, "=") || s.kind(after, lexer.KindBlockOpen)
	case s.is(lead, "("):
		owner := s.prev(lead - 1)
		if s.is(owner, "for") {
			return s.is(after, ":")
		}
		return s.is(owner, "]") && (s.is(after, ")") || s.is(after, ","))
	}
	return false
}

// queryComplexity is 1 plus the boolean predicates of a query file. Each
// BETWEEN carries an AND that joins its bounds, not two predicates.
func queryComplexity(toks []lexer.Token) int {
	n := 1
	for _, tok := range toks {
		if tok.Kind != lexer.KindKeyword {
			continue
		}
		switch tok.Text {
		case "WHERE", "ON", "HAVING", "WHEN", "AND", "OR":
			n++
		case "BETWEEN":
			n--
		}
	}
	if n < 1 {
		n = 1
	}
	return n
}
