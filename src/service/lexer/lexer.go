// Package lexer turns source text into a flat token stream. Each dialect
// family has its own Scanner; string and comment bodies are always consumed
// whole so that structural tokens never come from inside them.
package lexer

import (
	"context"
	"fmt"

	"code-atlas/src/model"
)

// DefaultCheckpoint is the number of tokens between context checks
const DefaultCheckpoint = 4096

// Scanner tokenizes one source file
type Scanner interface {
	// Family names the dialect family the scanner handles
	Family() string

	// Scan tokenizes src. It returns the context error if ctx is done at a
	// checkpoint; malformed input never fails the scan.
	Scan(ctx context.Context, src string) (*Result, error)
}

// New returns the scanner for a language. checkpoint is the number of
// tokens between context checks; zero uses DefaultCheckpoint.
func New(lang model.Language, checkpoint int) (Scanner, error) {
	switch lang {
	case model.LanguageGo, model.LanguageJavaScript, model.LanguageJava,
		model.LanguageCpp, model.LanguageRust:
		return newBraceScanner(lang, checkpoint), nil
	case model.LanguagePython:
		return &indentScanner{checkpoint: checkpoint}, nil
	case model.LanguageBash:
		return &shellScanner{checkpoint: checkpoint}, nil
	case model.LanguageSQL:
		return &queryScanner{checkpoint: checkpoint}, nil
	}
	return nil, fmt.Errorf("%w: %s", model.ErrUnsupportedLanguage, lang)
}

// Scan is a convenience wrapper that selects the scanner and runs it
func Scan(ctx context.Context, lang model.Language, src string, checkpoint int) (*Result, error) {
	s, err := New(lang, checkpoint)
	if err != nil {
		return nil, err
	}
	return s.Scan(ctx, src)
}

func finish(c *cursor) (*Result, error) {
	if c.err != nil {
		return nil, c.err
	}
	// a final check so cancellation is seen even on short files
	if err := c.ctx.Err(); err != nil {
		return nil, err
	}
	return c.res, nil
}
