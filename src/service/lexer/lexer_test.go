package lexer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"code-atlas/src/model"
)

func scan(t *testing.T, lang model.Language, src string) *Result {
	t.Helper()
	res, err := Scan(context.Background(), lang, src, 0)
	require.NoError(t, err)
	return res
}

func countKind(res *Result, kind Kind) int {
	n := 0
	for _, tok := range res.Tokens {
		if tok.Kind == kind {
			n++
		}
	}
	return n
}

func texts(res *Result, kind Kind) []string {
	var out []string
	for _, tok := range res.Tokens {
		if tok.Kind == kind {
			out = append(out, tok.Text)
		}
	}
	return out
}

func TestNoStructuralTokensFromStringsOrComments(t *testing.T) {
	tests := []struct {
		name string
		lang model.Language
		src  string
	}{
		{"go", model.LanguageGo, "// { if }\n/* { } */\nvar s = \"{ if (a && b) }\"\nvar r = `{\n}`\n"},
		{"javascript", model.LanguageJavaScript, "const a = '{';\nconst b = `x ${ {a: 1}.a } {`;\nconst re = /[{}]+/g;\n"},
		{"java", model.LanguageJava, "char c = '{';\nString s = \"}\"; // {\n"},
		{"cpp", model.LanguageCpp, "auto s = R\"x({ } if)x\";\n/* { */\n"},
		{"rust", model.LanguageRust, "let s = r#\"{ \"quoted\" }\"#;\nlet c = '{';\n/* outer /* { */ } */\n"},
		{"python", model.LanguagePython, "s = '''\n{ if x:\n'''\n# if y:\nt = f\"{x}\"\n"},
		{"bash", model.LanguageBash, "echo \"if then { fi\"\n# do done\necho 'case in esac'\n"},
		{"sql", model.LanguageSQL, "SELECT 'BEGIN CASE END' FROM t; -- BEGIN\n/* CASE */\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := scan(t, tt.lang, tt.src)
			assert.Zero(t, countKind(res, KindBlockOpen), "block-open")
			assert.Zero(t, countKind(res, KindBlockClose), "block-close")
			for _, tok := range res.Tokens {
				if tok.Kind == KindKeyword {
					assert.NotContains(t, []string{"if", "IF", "CASE", "then", "fi"}, tok.Text)
				}
			}
			assert.Equal(t, model.ConfidenceFull, res.Confidence)
		})
	}
}

func TestBraceBlocksBalance(t *testing.T) {
	src := "func f(a int) int {\n\tif a > 1 {\n\t\treturn 2\n\t}\n\treturn a\n}\n"
	res := scan(t, model.LanguageGo, src)

	assert.Equal(t, 2, countKind(res, KindBlockOpen))
	assert.Equal(t, 2, countKind(res, KindBlockClose))
	assert.Contains(t, texts(res, KindKeyword), "func")
	assert.Equal(t, []string{"1", "2"}, texts(res, KindLiteral))
}

func TestRustLifetimeIsNotAString(t *testing.T) {
	res := scan(t, model.LanguageRust, "fn get<'a>(x: &'a str) -> &'a str {\n    x\n}\n")
	assert.Equal(t, 1, countKind(res, KindBlockOpen))
	assert.Contains(t, texts(res, KindIdentifier), "'a")
	assert.Zero(t, countKind(res, KindString))
}

func TestJavaScriptDivisionIsNotRegex(t *testing.T) {
	res := scan(t, model.LanguageJavaScript, "const x = (a) / 2 / b;\n")
	assert.Zero(t, countKind(res, KindString))
	assert.Equal(t, 2, len(filter(texts(res, KindOperator), "/")))
}

func filter(in []string, want string) []string {
	var out []string
	for _, s := range in {
		if s == want {
			out = append(out, s)
		}
	}
	return out
}

func TestPythonIndentationBlocks(t *testing.T) {
	src := "def f(x):\n    if x:\n        return 1\n\n    # note\n    return 2\n\nprint(f(3))\n"
	res := scan(t, model.LanguagePython, src)

	var blocks []Token
	for _, tok := range res.Tokens {
		if tok.Kind == KindBlockOpen || tok.Kind == KindBlockClose {
			blocks = append(blocks, tok)
		}
	}
	require.Len(t, blocks, 4)
	assert.Equal(t, Token{Kind: KindBlockOpen, Line: 2, EndLine: 2}, blocks[0])
	assert.Equal(t, Token{Kind: KindBlockOpen, Line: 3, EndLine: 3}, blocks[1])
	assert.Equal(t, Token{Kind: KindBlockClose, Line: 6, EndLine: 6}, blocks[2])
	assert.Equal(t, Token{Kind: KindBlockClose, Line: 8, EndLine: 8}, blocks[3])
}

func TestPythonBracketsSuppressIndentation(t *testing.T) {
	src := "x = [\n        1,\n    2,\n]\ny = 3\n"
	res := scan(t, model.LanguagePython, src)
	assert.Zero(t, countKind(res, KindBlockOpen))
	assert.Zero(t, countKind(res, KindBlockClose))
}

func TestPythonUnclosedBlocksCloseAtEOF(t *testing.T) {
	res := scan(t, model.LanguagePython, "def f():\n    return 1\n")
	assert.Equal(t, 1, countKind(res, KindBlockOpen))
	assert.Equal(t, 1, countKind(res, KindBlockClose))
	last := res.Tokens[len(res.Tokens)-1]
	assert.Equal(t, KindBlockClose, last.Kind)
	assert.Equal(t, 2, last.Line)
}

func TestShellBlocks(t *testing.T) {
	src := `#!/bin/bash
deploy() {
  if [ "$1" = prod ]; then
    echo "$#"
  elif [ -z "$1" ]; then
    exit 1
  else
    for f in *.sh; do
      echo done
    done
  fi
  case "$2" in
    a) echo a ;;
    *) echo other ;;
  esac
}
`
	res := scan(t, model.LanguageBash, src)
	assert.Equal(t, countKind(res, KindBlockOpen), countKind(res, KindBlockClose))
	// function body, two then branches, else, do, case..in
	assert.Equal(t, 6, countKind(res, KindBlockOpen))
	assert.Equal(t, 1, countKind(res, KindComment))
	assert.Contains(t, texts(res, KindIdentifier), "done", "done as an echo argument is a word")
}

func TestShellHeredocIsOneString(t *testing.T) {
	src := "cat <<EOF\nif { fi\nEOF\necho ok\n"
	res := scan(t, model.LanguageBash, src)
	assert.Zero(t, countKind(res, KindBlockOpen))
	require.Equal(t, 1, countKind(res, KindString))
	for _, tok := range res.Tokens {
		if tok.Kind == KindString {
			assert.Equal(t, 2, tok.Line)
			assert.Equal(t, 3, tok.EndLine)
		}
	}
}

func TestShellRedirectIsNotALiteral(t *testing.T) {
	res := scan(t, model.LanguageBash, "cmd 2>&1 >/dev/null\nsleep 5\n")
	assert.Equal(t, []string{"5"}, texts(res, KindLiteral))
}

func TestQueryKeywordsAndBlocks(t *testing.T) {
	src := "select id, case when a = 1 then 'x' else 'y' end from t\nwhere b between 1 and 5;\n" +
		"begin transaction;\ncommit;\n"
	res := scan(t, model.LanguageSQL, src)

	assert.Equal(t, 1, countKind(res, KindBlockOpen))
	assert.Equal(t, 1, countKind(res, KindBlockClose))
	kw := texts(res, KindKeyword)
	assert.Contains(t, kw, "SELECT")
	assert.Contains(t, kw, "WHEN")
	assert.Contains(t, kw, "BETWEEN")
	assert.Contains(t, kw, "BEGIN")
}

func TestQueryEndIfDoesNotClose(t *testing.T) {
	src := "BEGIN\n  IF x THEN\n    y := 1;\n  END IF;\nEND;\n"
	res := scan(t, model.LanguageSQL, src)
	assert.Equal(t, 1, countKind(res, KindBlockOpen))
	assert.Equal(t, 1, countKind(res, KindBlockClose))
}

func TestMalformedBytesReduceConfidence(t *testing.T) {
	src := "package main\n\x00\x01 garbage {\nfunc main() {}\n\xff\xfe\n"
	res := scan(t, model.LanguageGo, src)

	assert.Equal(t, model.ConfidenceReduced, res.Confidence)
	assert.Equal(t, []int{2, 4}, res.MalformedLines)
	// the skipped brace on line 2 never reaches the stream
	assert.Equal(t, 1, countKind(res, KindBlockOpen))
	assert.Contains(t, texts(res, KindKeyword), "func")
}

func TestCodeLinesSkipCommentsAndBlanks(t *testing.T) {
	src := "// header\n\nint x = 1; // trailing\n/*\n * doc\n */\nint y = 2;\n"
	res := scan(t, model.LanguageCpp, src)
	assert.Equal(t, map[int]bool{3: true, 7: true}, res.CodeLines())
}

func TestScanHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Scan(ctx, model.LanguageGo, "package main\nfunc main() {}\n", 1)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewUnsupportedLanguage(t *testing.T) {
	_, err := New(model.LanguageUnsupported, 0)
	assert.ErrorIs(t, err, model.ErrUnsupportedLanguage)
}

func TestScannerFamilies(t *testing.T) {
	families := map[model.Language]string{
		model.LanguageGo:     "brace",
		model.LanguageRust:   "brace",
		model.LanguagePython: "indent",
		model.LanguageBash:   "shell",
		model.LanguageSQL:    "query",
	}
	for lang, want := range families {
		s, err := New(lang, 0)
		require.NoError(t, err)
		assert.Equal(t, want, s.Family())
	}
}
