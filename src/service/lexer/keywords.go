package lexer

import "code-atlas/src/model"

func set(words ...string) map[string]bool {
	m := make(map[string]bool, len(words))
	for _, w := range words {
		m[w] = true
	}
	return m
}

var braceKeywords = map[model.Language]map[string]bool{
	model.LanguageGo: set(
		"break", "case", "chan", "const", "continue", "default", "defer", "else",
		"fallthrough", "for", "func", "go", "goto", "if", "import", "interface",
		"map", "package", "range", "return", "select", "struct", "switch", "type", "var",
	),
	model.LanguageJavaScript: set(
		"async", "await", "break", "case", "catch", "class", "const", "continue",
		"debugger", "default", "delete", "do", "else", "export", "extends", "finally",
		"for", "function", "if", "import", "in", "instanceof", "let", "new", "of",
		"return", "static", "super", "switch", "this", "throw", "try", "typeof",
		"var", "void", "while", "with", "yield", "readonly", "enum", "interface",
		"type", "implements", "private", "protected", "public",
	),
	model.LanguageJava: set(
		"abstract", "assert", "boolean", "break", "byte", "case", "catch", "char",
		"class", "continue", "default", "do", "double", "else", "enum", "extends",
		"final", "finally", "float", "for", "if", "implements", "import",
		"instanceof", "int", "interface", "long", "native", "new", "package",
		"private", "protected", "public", "return", "short", "static", "super",
		"switch", "synchronized", "this", "throw", "throws", "try", "void",
		"volatile", "while", "var", "record", "yield",
	),
	model.LanguageCpp: set(
		"auto", "break", "case", "catch", "char", "class", "const", "constexpr",
		"continue", "default", "delete", "do", "double", "else", "enum", "explicit",
		"extern", "float", "for", "friend", "goto", "if", "inline", "int", "long",
		"namespace", "new", "noexcept", "operator", "override", "private",
		"protected", "public", "register", "return", "short", "signed", "sizeof",
		"static", "struct", "switch", "template", "this", "throw", "try", "typedef",
		"typename", "union", "unsigned", "using", "virtual", "void", "volatile",
		"while", "define", "include",
	),
	model.LanguageRust: set(
		"as", "async", "await", "break", "const", "continue", "crate", "dyn", "else",
		"enum", "extern", "fn", "for", "if", "impl", "in", "let", "loop", "match",
		"mod", "move", "mut", "pub", "ref", "return", "self", "Self", "static",
		"struct", "super", "trait", "type", "unsafe", "use", "where", "while",
	),
}

var pythonKeywords = set(
	"and", "as", "assert", "async", "await", "break", "case", "class", "continue",
	"def", "del", "elif", "else", "except", "finally", "for", "from", "global",
	"if", "import", "in", "is", "lambda", "match", "nonlocal", "not", "or",
	"pass", "raise", "return", "try", "while", "with", "yield",
)

var shellKeywords = set(
	"if", "then", "else", "elif", "fi", "for", "while", "until", "do", "done",
	"case", "esac", "in", "function", "select", "return", "local", "export",
	"readonly", "declare", "break", "continue", "time",
)

// sqlKeywords are matched case-insensitively and emitted upper-cased
var sqlKeywords = set(
	"SELECT", "FROM", "WHERE", "AND", "OR", "NOT", "IN", "IS", "NULL", "LIKE",
	"BETWEEN", "EXISTS", "JOIN", "INNER", "LEFT", "RIGHT", "FULL", "OUTER",
	"CROSS", "ON", "USING", "GROUP", "BY", "ORDER", "HAVING", "LIMIT", "OFFSET",
	"UNION", "ALL", "DISTINCT", "AS", "INSERT", "INTO", "VALUES", "UPDATE", "SET",
	"DELETE", "CREATE", "TABLE", "VIEW", "INDEX", "DROP", "ALTER", "ADD",
	"PRIMARY", "KEY", "FOREIGN", "REFERENCES", "CONSTRAINT", "DEFAULT", "UNIQUE",
	"CHECK", "CASE", "WHEN", "THEN", "ELSE", "END", "BEGIN", "COMMIT", "ROLLBACK",
	"TRANSACTION", "WITH", "RECURSIVE", "FUNCTION", "PROCEDURE", "TRIGGER",
	"RETURNS", "RETURN", "DECLARE", "IF", "LOOP", "WHILE", "REPEAT", "FOR",
	"EACH", "ROW", "ASC", "DESC", "REPLACE", "TRUE", "FALSE", "WORK", "TRAN",
	"DEFERRED", "IMMEDIATE", "EXCLUSIVE", "LANGUAGE",
)
