package language

import (
	"bytes"
	"path/filepath"
	"regexp"
	"strings"

	"code-atlas/src/model"
)

// sniffBytes bounds how much of a file is inspected for shebangs and keywords
const sniffBytes = 4096

var extensionMap = map[string]model.Language{
	".py":   model.LanguagePython,
	".js":   model.LanguageJavaScript,
	".jsx":  model.LanguageJavaScript,
	".mjs":  model.LanguageJavaScript,
	".cjs":  model.LanguageJavaScript,
	".ts":   model.LanguageJavaScript,
	".tsx":  model.LanguageJavaScript,
	".java": model.LanguageJava,
	".c":    model.LanguageCpp,
	".cc":   model.LanguageCpp,
	".cpp":  model.LanguageCpp,
	".cxx":  model.LanguageCpp,
	".h":    model.LanguageCpp,
	".hpp":  model.LanguageCpp,
	".hh":   model.LanguageCpp,
	".go":   model.LanguageGo,
	".rs":   model.LanguageRust,
	".sql":  model.LanguageSQL,
	".sh":   model.LanguageBash,
	".bash": model.LanguageBash,
}

var shebangInterpreters = []struct {
	name string
	lang model.Language
}{
	{"python", model.LanguagePython},
	{"node", model.LanguageJavaScript},
	{"bash", model.LanguageBash},
	{"zsh", model.LanguageBash},
	{"sh", model.LanguageBash},
}

var (
	goPackage   = regexp.MustCompile(`(?m)^package\s+\w+`)
	rustMain    = regexp.MustCompile(`\bfn\s+main\s*\(`)
	sqlKeyword  = regexp.MustCompile(`(?i)\b(select\s+.+\s+from|create\s+table|insert\s+into)\b`)
	pythonDef   = regexp.MustCompile(`(?m)^\s*def\s+\w+\s*\(.*\)\s*(->.*)?:`)
	javaClass   = regexp.MustCompile(`\bpublic\s+(final\s+)?class\s+\w+`)
	cppInclude  = regexp.MustCompile(`(?m)^\s*#include\s*[<"]`)
	jsSignature = regexp.MustCompile(`\b(const|let)\s+\w+\s*=\s*(require\(|\(.*\)\s*=>)`)
)

// Classify maps a file onto a supported language, or model.LanguageUnsupported.
// The extension decides when present; extensionless files are sniffed.
func Classify(name string, content []byte) model.Language {
	ext := strings.ToLower(filepath.Ext(name))
	if ext != "" {
		if lang, ok := extensionMap[ext]; ok {
			return lang
		}
		return model.LanguageUnsupported
	}

	sample := content
	if len(sample) > sniffBytes {
		sample = sample[:sniffBytes]
	}

	if lang, ok := fromShebang(sample); ok {
		return lang
	}
	return fromKeywords(sample)
}

// IsSupported reports whether the classifier would accept the file
func IsSupported(name string, content []byte) bool {
	return Classify(name, content) != model.LanguageUnsupported
}

func fromShebang(sample []byte) (model.Language, bool) {
	if !bytes.HasPrefix(sample, []byte("#!")) {
		return "", false
	}
	line := sample
	if i := bytes.IndexByte(sample, '\n'); i >= 0 {
		line = sample[:i]
	}

	// "#!/usr/bin/env python3" and "#!/bin/bash -e" both resolve on the interpreter's base name
	fields := strings.Fields(strings.TrimPrefix(string(line), "#!"))
	if len(fields) == 0 {
		return "", false
	}
	interp := filepath.Base(fields[0])
	if interp == "env" && len(fields) > 1 {
		interp = filepath.Base(fields[1])
	}

	for _, s := range shebangInterpreters {
		if strings.HasPrefix(interp, s.name) {
			return s.lang, true
		}
	}
	return "", false
}

func fromKeywords(sample []byte) model.Language {
	switch {
	case goPackage.Match(sample) && bytes.Contains(sample, []byte("func ")):
		return model.LanguageGo
	case rustMain.Match(sample):
		return model.LanguageRust
	case javaClass.Match(sample):
		return model.LanguageJava
	case cppInclude.Match(sample):
		return model.LanguageCpp
	case pythonDef.Match(sample):
		return model.LanguagePython
	case jsSignature.Match(sample):
		return model.LanguageJavaScript
	case sqlKeyword.Match(sample):
		return model.LanguageSQL
	}
	return model.LanguageUnsupported
}
