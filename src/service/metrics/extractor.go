// Package metrics computes per-file and per-function size and complexity
// metrics from a scanned token stream.
package metrics

import (
	"context"
	"sort"

	"code-atlas/src/model"
	"code-atlas/src/service/lexer"
	"code-atlas/src/util"
)

// FileAnalysis is one scanned file with its metrics; it is the unit the
// smell detectors work on
type FileAnalysis struct {
	Unit    model.SourceUnit
	Tokens  []lexer.Token
	Metrics model.FileMetrics
}

// Extractor computes metrics from token streams
type Extractor struct {
	checkpoint int
}

// NewExtractor creates a new metrics extractor that checks its context every
// checkpoint tokens; zero uses lexer.DefaultCheckpoint
func NewExtractor(checkpoint int) *Extractor {
	if checkpoint <= 0 {
		checkpoint = lexer.DefaultCheckpoint
	}
	return &Extractor{checkpoint: checkpoint}
}

// expired returns the context error on every checkpoint-th token
func (e *Extractor) expired(ctx context.Context, i int) error {
	if i%e.checkpoint != 0 {
		return nil
	}
	return ctx.Err()
}

// frame is one open block. fn is the index of the innermost enclosing
// function, or -1 at file level; depth counts blocks inside that function's body.
type frame struct {
	fn     int
	depth  int
	isBody bool
}

// Extract computes metrics for a scanned unit. It stops with the context
// error once ctx is done.
func (e *Extractor) Extract(ctx context.Context, unit model.SourceUnit, res *lexer.Result) (*FileAnalysis, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	codeLines := res.CodeLines()

	fm := model.FileMetrics{
		Path:       unit.Path,
		Language:   unit.Language,
		LineCount:  len(codeLines),
		Confidence: res.Confidence,
	}

	var functions []model.FunctionMetrics
	maxDepth := 0

	if unit.Language == model.LanguageSQL {
		fm.Complexity = queryComplexity(res.Tokens)
		maxDepth = rawDepth(res.Tokens)
	} else {
		var err error
		functions, maxDepth, err = e.walk(ctx, unit, res.Tokens, codeLines)
		if err != nil {
			return nil, err
		}
	}

	fm.Functions = len(functions)
	fm.FunctionMetrics = functions
	fm.MaxNesting = maxDepth

	if unit.Language != model.LanguageSQL {
		fm.Complexity = 1
		if len(functions) > 0 {
			fm.Complexity = 0
			fm.MaxNesting = 0
			for _, fn := range functions {
				fm.Complexity += fn.CyclomaticComplexity
				if fn.MaxNestingDepth > fm.MaxNesting {
					fm.MaxNesting = fn.MaxNestingDepth
				}
			}
		}
	}

	util.Debug("Metrics for %s: loc=%d complexity=%d functions=%d nesting=%d",
		unit.Path, fm.LineCount, fm.Complexity, fm.Functions, fm.MaxNesting)

	return &FileAnalysis{Unit: unit, Tokens: res.Tokens, Metrics: fm}, nil
}

// walk assigns blocks and decision points to functions. It returns the
// functions ordered by start line and the deepest block nesting in the file.
func (e *Extractor) walk(ctx context.Context, unit model.SourceUnit, toks []lexer.Token, codeLines map[int]bool) ([]model.FunctionMetrics, int, error) {
	s := newStream(toks)
	headers, err := e.detectHeaders(ctx, s, unit.Language)
	if err != nil {
		return nil, 0, err
	}
	isDecision := decisionRule(unit.Language, s)

	var (
		functions []model.FunctionMetrics
		stack     []frame
		maxDepth  int
		lastCode  int
	)

	current := func() int {
		if len(stack) == 0 {
			return -1
		}
		return stack[len(stack)-1].fn
	}

	for i, tok := range toks {
		if err := e.expired(ctx, i); err != nil {
			return nil, 0, err
		}
		switch tok.Kind {
		case lexer.KindBlockOpen:
			if h, ok := headers[i]; ok {
				functions = append(functions, model.FunctionMetrics{
					Name:                 h.name,
					FilePath:             unit.Path,
					StartLine:            h.line,
					ParameterCount:       h.params,
					CyclomaticComplexity: 1,
				})
				stack = append(stack, frame{fn: len(functions) - 1, isBody: true})
			} else {
				parent := frame{fn: -1}
				if len(stack) > 0 {
					parent = stack[len(stack)-1]
				}
				f := frame{fn: parent.fn, depth: parent.depth + 1}
				stack = append(stack, f)
				if f.fn >= 0 && f.depth > functions[f.fn].MaxNestingDepth {
					functions[f.fn].MaxNestingDepth = f.depth
				}
			}
			if len(stack) > maxDepth {
				maxDepth = len(stack)
			}

		case lexer.KindBlockClose:
			if len(stack) == 0 {
				continue
			}
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if top.isBody {
				end := lastCode
				if tok.Text != "" {
					end = tok.Line
				}
				functions[top.fn].EndLine = end
			}

		default:
			if fn := current(); fn >= 0 && isDecision(i) {
				functions[fn].DecisionCount++
				functions[fn].CyclomaticComplexity++
			}
		}

		if tok.IsCode() && tok.Text != "" {
			lastCode = tok.EndLine
		}
	}

	// bodies left open at end of input run to the last code line
	for _, f := range stack {
		if f.isBody && functions[f.fn].EndLine == 0 {
			functions[f.fn].EndLine = lastCode
		}
	}

	for i := range functions {
		fn := &functions[i]
		if fn.EndLine < fn.StartLine {
			fn.EndLine = fn.StartLine
		}
		for l := fn.StartLine; l <= fn.EndLine; l++ {
			if codeLines[l] {
				fn.LineCount++
			}
		}
	}

	sort.SliceStable(functions, func(a, b int) bool {
		return functions[a].StartLine < functions[b].StartLine
	})
	return functions, maxDepth, nil
}

// rawDepth is the deepest block nesting regardless of functions
func rawDepth(toks []lexer.Token) int {
	depth, deepest := 0, 0
	for _, tok := range toks {
		switch tok.Kind {
		case lexer.KindBlockOpen:
			depth++
			if depth > deepest {
				deepest = depth
			}
		case lexer.KindBlockClose:
			if depth > 0 {
				depth--
			}
		}
	}
	return deepest
}
