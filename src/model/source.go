package model

import "strings"

// Language identifies a supported source dialect
type Language string

const (
	LanguagePython      Language = "python"
	LanguageJavaScript  Language = "javascript"
	LanguageJava        Language = "java"
	LanguageCpp         Language = "cpp"
	LanguageGo          Language = "go"
	LanguageRust        Language = "rust"
	LanguageSQL         Language = "sql"
	LanguageBash        Language = "bash"
	LanguageUnsupported Language = "unsupported"
)

// SupportedLanguages lists every dialect the engine can analyze
var SupportedLanguages = []Language{
	LanguagePython, LanguageJavaScript, LanguageJava, LanguageCpp,
	LanguageGo, LanguageRust, LanguageSQL, LanguageBash,
}

// Confidence marks whether a file was scanned cleanly
type Confidence string

const (
	ConfidenceFull    Confidence = "full"
	ConfidenceReduced Confidence = "reduced"
)

// SubmittedFile is one (filename, content) pair handed to the engine
type SubmittedFile struct {
	Name    string
	Content []byte
}

// SourceUnit is one analyzed file
type SourceUnit struct {
	Path      string
	Language  Language
	Text      string
	LineCount int

	Confidence     Confidence
	MalformedLines []int
}

// NewSourceUnit creates a source unit with its line count computed
func NewSourceUnit(path string, lang Language, text string) SourceUnit {
	return SourceUnit{
		Path:       path,
		Language:   lang,
		Text:       text,
		LineCount:  CountLines(text),
		Confidence: ConfidenceFull,
	}
}

// CountLines counts physical lines; a trailing newline does not open a new line
func CountLines(text string) int {
	if text == "" {
		return 0
	}
	n := strings.Count(text, "\n")
	if !strings.HasSuffix(text, "\n") {
		n++
	}
	return n
}
