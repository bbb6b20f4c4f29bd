package detector

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"code-atlas/src/config"
	"code-atlas/src/model"
	"code-atlas/src/service/lexer"
	"code-atlas/src/service/metrics"
)

var (
	// words that open a declaration whose literals are named constants
	constMarkers = map[string]bool{
		"const": true, "final": true, "constexpr": true, "readonly": true,
		"define": true, "enum": true,
	}

	constantName = regexp.MustCompile(`^[A-Z][A-Z0-9_]*$`)
	hexSuffix    = regexp.MustCompile(`(?:[iu](?:8|16|32|64|128|size)|[uUlL]+)$`)
	numberSuffix = regexp.MustCompile(`(?:[iu](?:8|16|32|64|128|size)|f32|f64|[uUlLfFdDnjJ]+)$`)
	digitMarks   = strings.NewReplacer("_", "", "'", "")
)

// MagicNumberDetector flags numeric literals other than 0 and 1 that appear
// outside a constant declaration
type MagicNumberDetector struct {
	BaseDetector
	cfg config.MagicNumberDetectorConfig
}

// NewMagicNumberDetector creates a new magic number detector
func NewMagicNumberDetector(base BaseDetector, cfg config.MagicNumberDetectorConfig) *MagicNumberDetector {
	return &MagicNumberDetector{
		BaseDetector: base,
		cfg:          cfg,
	}
}

// Name returns the detector name
func (d *MagicNumberDetector) Name() string {
	return "magic_number"
}

// IsEnabled returns whether the detector is enabled
func (d *MagicNumberDetector) IsEnabled() bool {
	return d.cfg.Enabled
}

// Detect reports one finding per line that carries magic numbers
func (d *MagicNumberDetector) Detect(ctx context.Context, file *metrics.FileAnalysis) ([]model.Finding, error) {
	lang := file.Metrics.Language
	if lang == model.LanguageSQL {
		return nil, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	byLine := make(map[int][]string)
	var order []int

	scope := constScope{lang: lang}
	for i, tok := range file.Tokens {
		scope.observe(file.Tokens, i)
		if tok.Kind != lexer.KindLiteral || scope.active {
			continue
		}
		v, ok := numericValue(tok.Text)
		if !ok || v == 0 || v == 1 {
			continue
		}
		if _, seen := byLine[tok.Line]; !seen {
			order = append(order, tok.Line)
		}
		byLine[tok.Line] = append(byLine[tok.Line], tok.Text)
	}

	findings := make([]model.Finding, 0, len(order))
	for _, line := range order {
		values := byLine[line]
		noun := "Magic number"
		if len(values) > 1 {
			noun = "Magic numbers"
		}
		findings = append(findings, d.NewFinding(model.SmellMagicNumber, model.SeverityLow,
			file.Metrics.Path, line, line,
			fmt.Sprintf("%s %s on line %d", noun, strings.Join(values, ", "), line),
			"Replace the literal with a named constant"))
	}
	return d.FilterBySeverity(findings), nil
}

// constScope tracks whether the scan is inside a constant declaration.
// A declaration ends at a semicolon or line end at its own nesting level,
// or when a body opens or an enclosing bracket closes.
type constScope struct {
	lang     model.Language
	active   bool
	braces   bool
	depth    int
	lastCode lexer.Token
	prev     lexer.Token
	hasPrev  bool
}

func (s *constScope) observe(toks []lexer.Token, i int) {
	tok := toks[i]
	defer func() {
		if tok.Kind == lexer.KindComment {
			return
		}
		s.prev, s.hasPrev = tok, true
		if tok.IsCode() && tok.Text != "" {
			s.lastCode = tok
		}
	}()

	if !s.active {
		s.start(toks, i)
		return
	}

	switch tok.Kind {
	case lexer.KindNewline:
		if s.depth == 0 && !continuesLine(s.lastCode) {
			s.active = false
		}
	case lexer.KindBlockOpen:
		if !s.braces && s.depth == 0 {
			s.active = false
			return
		}
		s.depth++
	case lexer.KindBlockClose:
		s.depth--
	case lexer.KindOperator:
		switch tok.Text {
		case "(", "[":
			s.depth++
		case ")", "]":
			s.depth--
		case ";":
			if s.depth <= 0 {
				s.active = false
			}
		}
	}
	if s.depth < 0 {
		s.active = false
	}
}

func (s *constScope) start(toks []lexer.Token, i int) {
	tok := toks[i]
	switch tok.Kind {
	case lexer.KindKeyword, lexer.KindIdentifier:
	default:
		return
	}

	marker := constMarkers[tok.Text] || (s.lang == model.LanguageRust && tok.Text == "static")
	if !marker && (s.lang == model.LanguagePython || s.lang == model.LanguageBash) {
		marker = s.atLineStart() && constantName.MatchString(tok.Text) && nextIsAssign(toks, i)
	}
	if !marker {
		return
	}
	s.active = true
	s.braces = tok.Text == "enum"
	s.depth = 0
}

func (s *constScope) atLineStart() bool {
	if !s.hasPrev {
		return true
	}
	switch s.prev.Kind {
	case lexer.KindNewline, lexer.KindBlockOpen, lexer.KindBlockClose:
		return true
	}
	return s.prev.Kind == lexer.KindOperator && s.prev.Text == ";"
}

// continuesLine reports whether a line ending in tok carries on to the next
func continuesLine(tok lexer.Token) bool {
	if tok.Kind != lexer.KindOperator {
		return false
	}
	switch tok.Text {
	case ")", "]", ";":
		return false
	}
	return true
}

func nextIsAssign(toks []lexer.Token, i int) bool {
	for k := i + 1; k < len(toks); k++ {
		if toks[k].Kind == lexer.KindComment {
			continue
		}
		return toks[k].Kind == lexer.KindOperator && toks[k].Text == "="
	}
	return false
}

// numericValue parses a literal in any supported dialect, ignoring digit
// separators and type suffixes
func numericValue(lit string) (float64, bool) {
	s := digitMarks.Replace(lit)
	if strings.HasPrefix(strings.ToLower(s), "0x") {
		s = hexSuffix.ReplaceAllString(s, "")
	} else {
		s = numberSuffix.ReplaceAllString(s, "")
	}
	if s == "" {
		return 0, false
	}
	if v, err := strconv.ParseUint(s, 0, 64); err == nil {
		return float64(v), true
	}
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return v, true
	}
	return 0, false
}
