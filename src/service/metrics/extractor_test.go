package metrics

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"code-atlas/src/model"
	"code-atlas/src/service/lexer"
)

func analyze(t *testing.T, lang model.Language, path, src string) *FileAnalysis {
	t.Helper()
	res, err := lexer.Scan(context.Background(), lang, src, 0)
	require.NoError(t, err)
	a, err := NewExtractor(0).Extract(context.Background(), model.NewSourceUnit(path, lang, src), res)
	require.NoError(t, err)
	return a
}

func fn(t *testing.T, a *FileAnalysis, name string) model.FunctionMetrics {
	t.Helper()
	for _, f := range a.Metrics.FunctionMetrics {
		if f.Name == name {
			return f
		}
	}
	require.Failf(t, "function not found", "%s in %s", name, a.Unit.Path)
	return model.FunctionMetrics{}
}

func TestBranchFreeFileHasComplexityOne(t *testing.T) {
	a := analyze(t, model.LanguagePython, "flat.py", "x = 1\ny = 2\nprint(x + y)\n")
	assert.Equal(t, 1, a.Metrics.Complexity)
	assert.Equal(t, 3, a.Metrics.LineCount)
	assert.Zero(t, a.Metrics.Functions)
}

func TestEmptyFile(t *testing.T) {
	a := analyze(t, model.LanguageGo, "empty.go", "")
	assert.Equal(t, 1, a.Metrics.Complexity)
	assert.Zero(t, a.Metrics.LineCount)
	assert.Equal(t, model.ConfidenceFull, a.Metrics.Confidence)
}

func TestElevenConditionals(t *testing.T) {
	var b strings.Builder
	b.WriteString("package main\n\nfunc decide(x int) int {\n")
	for i := 0; i < 11; i++ {
		fmt.Fprintf(&b, "\tif x == %d {\n\t\treturn %d\n\t}\n", i+2, i)
	}
	b.WriteString("\treturn 0\n}\n")

	a := analyze(t, model.LanguageGo, "decide.go", b.String())
	require.Equal(t, 1, a.Metrics.Functions)

	f := fn(t, a, "decide")
	assert.Equal(t, 12, f.CyclomaticComplexity)
	assert.Equal(t, 11, f.DecisionCount)
	assert.Equal(t, 1, f.MaxNestingDepth)
	assert.Equal(t, 1, f.ParameterCount)
	assert.Equal(t, 3, f.StartLine)
	assert.Equal(t, 38, f.EndLine)
	assert.Equal(t, 12, a.Metrics.Complexity)
}

func TestPythonNestingAndExtent(t *testing.T) {
	src := `def deep(a):
    if a:
        if a:
            if a:
                if a:
                    if a:
                        return a
    return None
`
	a := analyze(t, model.LanguagePython, "deep.py", src)
	f := fn(t, a, "deep")

	assert.Equal(t, 5, f.MaxNestingDepth)
	assert.Equal(t, 6, f.CyclomaticComplexity)
	assert.Equal(t, 1, f.StartLine)
	assert.Equal(t, 8, f.EndLine)
	assert.Equal(t, 8, f.LineCount)
	assert.Equal(t, 5, a.Metrics.MaxNesting)
}

func TestPythonParameters(t *testing.T) {
	src := "class A:\n    def m(self, a, *, b, **kw):\n        return a and b or kw\n"
	a := analyze(t, model.LanguagePython, "a.py", src)
	f := fn(t, a, "m")
	assert.Equal(t, 3, f.ParameterCount)
	assert.Equal(t, 3, f.CyclomaticComplexity)
	assert.Zero(t, f.MaxNestingDepth)
}

func TestJavaScriptFunctions(t *testing.T) {
	src := `function load(a, b) {
  return a ? b : null;
}
const save = async (x) => {
  if (x && x.ok) { return 1; }
};
class Store {
  get(key) {
    return this.m[key];
  }
}
`
	a := analyze(t, model.LanguageJavaScript, "store.js", src)
	require.Equal(t, 3, a.Metrics.Functions)

	names := []string{}
	for _, f := range a.Metrics.FunctionMetrics {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"load", "save", "get"}, names)

	assert.Equal(t, 2, fn(t, a, "load").CyclomaticComplexity)
	assert.Equal(t, 2, fn(t, a, "load").ParameterCount)
	assert.Equal(t, 3, fn(t, a, "save").CyclomaticComplexity)
	assert.Equal(t, 1, fn(t, a, "save").MaxNestingDepth)
	assert.Equal(t, 1, fn(t, a, "get").CyclomaticComplexity)
	assert.Equal(t, 6, a.Metrics.Complexity)
}

func TestJavaMethod(t *testing.T) {
	src := `public class Calc {
    public int add(int a, int b) throws IllegalStateException {
        for (int i = 0; i < a; i++) {
            if (i % 2 == 0 || i > 10) {
                b++;
            }
        }
        return b;
    }
}
`
	a := analyze(t, model.LanguageJava, "Calc.java", src)
	require.Equal(t, 1, a.Metrics.Functions)
	f := fn(t, a, "add")
	assert.Equal(t, 2, f.ParameterCount)
	assert.Equal(t, 4, f.CyclomaticComplexity)
	assert.Equal(t, 2, f.MaxNestingDepth)
	assert.Equal(t, 2, f.StartLine)
	assert.Equal(t, 9, f.EndLine)
}

func TestCppQualifiedMethod(t *testing.T) {
	src := "int Foo::bar(const std::map<int, int>& m, int n) const {\n  return n > 0 ? n : 0;\n}\n"
	a := analyze(t, model.LanguageCpp, "foo.cpp", src)
	f := fn(t, a, "bar")
	assert.Equal(t, 2, f.ParameterCount)
	assert.Equal(t, 2, f.CyclomaticComplexity)
}

func TestRustGenericsAndMatchArms(t *testing.T) {
	src := `fn pick<T: Into<String>>(x: T, y: Vec<Vec<u8>>) -> Option<T> {
    match y.len() {
        0 => None,
        _ => Some(x),
    }
}

trait Named {
    fn name(&self) -> String;
}
`
	a := analyze(t, model.LanguageRust, "pick.rs", src)
	require.Equal(t, 1, a.Metrics.Functions, "trait declarations have no body")
	f := fn(t, a, "pick")
	assert.Equal(t, 2, f.ParameterCount)
	// the _ arm is the catch-all and adds nothing
	assert.Equal(t, 2, f.CyclomaticComplexity)
	assert.Equal(t, 1, f.MaxNestingDepth)
}

func TestGoMethodsAndLiterals(t *testing.T) {
	src := `package srv

type Handler func(int) error

func (s *Server) Handle(w Writer, r *Request) (int, error) {
	go func() {
		if r == nil {
			return
		}
	}()
	return 0, nil
}
`
	a := analyze(t, model.LanguageGo, "srv.go", src)
	require.Equal(t, 2, a.Metrics.Functions)

	h := fn(t, a, "Handle")
	assert.Equal(t, 2, h.ParameterCount)
	// the if belongs to the literal, not to Handle
	assert.Equal(t, 1, h.CyclomaticComplexity)
	assert.Equal(t, 2, fn(t, a, anonymousName).CyclomaticComplexity)
}

func TestShellFunctions(t *testing.T) {
	src := `deploy() {
  if [ -f x ]; then
    echo a
  elif [ -d y ]; then
    echo b
  fi
  case "$1" in
    a) echo a ;;
    b) echo b ;;
    *) echo c ;;
  esac
}
function clean {
  rm -rf build || true
}
`
	a := analyze(t, model.LanguageBash, "deploy.sh", src)
	require.Equal(t, 2, a.Metrics.Functions)
	assert.Equal(t, 5, fn(t, a, "deploy").CyclomaticComplexity)
	assert.Equal(t, 1, fn(t, a, "deploy").MaxNestingDepth)
	assert.Equal(t, 2, fn(t, a, "clean").CyclomaticComplexity)
	assert.Equal(t, 7, a.Metrics.Complexity)
}

func TestQueryComplexity(t *testing.T) {
	src := `-- report
SELECT *
FROM a
JOIN b ON a.id = b.id
WHERE x = 1 AND y BETWEEN 1 AND 5 OR z = 2;
`
	a := analyze(t, model.LanguageSQL, "report.sql", src)
	assert.Equal(t, 5, a.Metrics.Complexity)
	assert.Zero(t, a.Metrics.Functions)
	assert.Equal(t, 4, a.Metrics.LineCount)
}

func TestLinesOfCodeSkipCommentsAndBlanks(t *testing.T) {
	src := "// header\n\npackage main\n\n/* block\n   comment */\nfunc main() {\n\t// inside\n}\n"
	a := analyze(t, model.LanguageGo, "main.go", src)
	assert.Equal(t, 3, a.Metrics.LineCount)
	assert.Equal(t, 2, fn(t, a, "main").LineCount)
}

func TestExtractIsDeterministic(t *testing.T) {
	src := "def f(a):\n    return a or 1\n\ndef g(b):\n    while b:\n        b -= 1\n"
	first := analyze(t, model.LanguagePython, "d.py", src)
	second := analyze(t, model.LanguagePython, "d.py", src)
	assert.Equal(t, first.Metrics, second.Metrics)
}

func TestRustClosuresAndReferencesAreNotBranches(t *testing.T) {
	a := analyze(t, model.LanguageRust, "spawn.rs", "fn f() { let c = || { 2 }; std::thread::spawn(|| {}); }\n")
	assert.Equal(t, 1, fn(t, a, "f").CyclomaticComplexity)

	src := `fn run(a: bool, b: bool) -> bool {
    let c = || { 2 };
    std::thread::spawn(move || {});
    let r: &&i32 = &&5;
    a || b && !a
}
`
	a = analyze(t, model.LanguageRust, "run.rs", src)
	assert.Equal(t, 3, fn(t, a, "run").CyclomaticComplexity)
}

func TestCppRvalueReferencesAreNotBranches(t *testing.T) {
	a := analyze(t, model.LanguageCpp, "take.cpp", "void f(std::string&& s) { auto&& x = s; }\n")
	assert.Equal(t, 1, fn(t, a, "f").CyclomaticComplexity)

	src := `void take(std::string&& s) {
  auto&& x = s;
  std::vector<int>&& v = make();
  for (Widget&& w : items) {
  }
  auto l = [](Widget&& w) { return w; };
  if (a && b) {
  }
}
`
	a = analyze(t, model.LanguageCpp, "take.cpp", src)
	// for, if and the && inside the condition
	assert.Equal(t, 4, fn(t, a, "take").CyclomaticComplexity)
}

func TestCatchAllArmsAddNoDecision(t *testing.T) {
	tests := []struct {
		name string
		lang model.Language
		path string
		src  string
		fn   string
		want int
	}{
		{
			name: "go default",
			lang: model.LanguageGo,
			path: "sw.go",
			src:  "package p\n\nfunc pick(x int) int {\n\tswitch x {\n\tcase 1:\n\t\treturn 2\n\tdefault:\n\t\treturn 0\n\t}\n}\n",
			fn:   "pick",
			want: 2,
		},
		{
			name: "python wildcard case",
			lang: model.LanguagePython,
			path: "sw.py",
			src:  "def pick(x):\n    match x:\n        case 1:\n            return 2\n        case _:\n            return 0\n",
			fn:   "pick",
			want: 2,
		},
		{
			name: "rust wildcard arm",
			lang: model.LanguageRust,
			path: "sw.rs",
			src:  "fn pick(x: i32) -> i32 {\n    match x {\n        1 => 2,\n        _ => 0,\n    }\n}\n",
			fn:   "pick",
			want: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := analyze(t, tt.lang, tt.path, tt.src)
			assert.Equal(t, tt.want, fn(t, a, tt.fn).CyclomaticComplexity)
		})
	}
}

func TestUnbalancedCallsExtractInLinearTime(t *testing.T) {
	src := "class A {\n" + strings.Repeat("a(", 200000)
	res, err := lexer.Scan(context.Background(), model.LanguageJava, src, 0)
	require.NoError(t, err)

	start := time.Now()
	_, err = NewExtractor(0).Extract(context.Background(), model.NewSourceUnit("slow.java", model.LanguageJava, src), res)
	require.NoError(t, err)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestExtractStopsOnDoneContext(t *testing.T) {
	src := "package p\n\nfunc f(x int) int {\n\tif x > 0 {\n\t\treturn x\n\t}\n\treturn 0\n}\n"
	res, err := lexer.Scan(context.Background(), model.LanguageGo, src, 0)
	require.NoError(t, err)
	unit := model.NewSourceUnit("f.go", model.LanguageGo, src)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = NewExtractor(1).Extract(ctx, unit, res)
	assert.ErrorIs(t, err, context.Canceled)

	expired, stop := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer stop()
	_, err = NewExtractor(1).Extract(expired, unit, res)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
