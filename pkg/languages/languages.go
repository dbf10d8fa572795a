package languages

import (
	"strings"

	"github.com/coderank/judge/pkg/constants"
	"github.com/coderank/judge/pkg/errs"
)

type LanguageType int

const (
	Python LanguageType = iota + 1
	JavaScript
	CPP
	Java
)

func (lt LanguageType) String() string {
	switch lt {
	case Python:
		return "python"
	case JavaScript:
		return "javascript"
	case CPP:
		return "cpp"
	case Java:
		return "java"
	default:
		return ""
	}
}

// aliasMap folds the free-form identifiers accepted by the submit endpoints
// into canonical language types.
var aliasMap = map[string]LanguageType{
	"python":     Python,
	"py":         Python,
	"javascript": JavaScript,
	"js":         JavaScript,
	"node":       JavaScript,
	"cpp":        CPP,
	"c++":        CPP,
	"cplusplus":  CPP,
	"java":       Java,
}

var sourceFileMap = map[LanguageType]string{
	Python:     "main.py",
	JavaScript: "main.js",
	CPP:        "main.cpp",
	Java:       "Main.java",
}

// localCommandMap holds the default interpreter invocation for languages that
// run locally without a build step. Compiled languages are absent on purpose.
var localCommandMap = map[LanguageType][]string{
	Python:     {"python3"},
	JavaScript: {"node"},
}

// Resolve maps a free-form language identifier to its canonical type.
// Unknown identifiers resolve to the fallback language instead of failing;
// the platform has always guessed rather than rejected (see Parse for the
// strict variant).
func Resolve(raw, fallback string) LanguageType {
	if lt, err := Parse(raw); err == nil {
		return lt
	}
	if lt, err := Parse(fallback); err == nil {
		return lt
	}
	return Python
}

// Parse is the strict form of Resolve: unknown identifiers return an error.
func Parse(raw string) (LanguageType, error) {
	k := strings.ToLower(strings.TrimSpace(raw))
	if lt, ok := aliasMap[k]; ok {
		return lt, nil
	}
	return 0, errs.ErrInvalidLanguage
}

// SourceFileName returns the file name the submitted code is written under.
func (lt LanguageType) SourceFileName() (string, error) {
	if name, ok := sourceFileMap[lt]; ok {
		return name, nil
	}
	return "", errs.ErrInvalidLanguage
}

// SandboxImage returns the container image used for sandboxed execution.
func (lt LanguageType) SandboxImage(prefix string) (string, error) {
	if prefix == "" {
		prefix = constants.DefaultSandboxImagePrefix
	}
	switch lt {
	case Python:
		return prefix + "-python", nil
	case JavaScript:
		return prefix + "-node", nil
	case CPP:
		return prefix + "-cpp", nil
	case Java:
		return prefix + "-java", nil
	default:
		return "", errs.ErrInvalidLanguage
	}
}

// LocalCommand returns the interpreter invocation for local execution, with
// the source file path appended as the program argument. Only zero-build-step
// languages are supported; everything else reports false.
func (lt LanguageType) LocalCommand(sourcePath string) ([]string, bool) {
	base, ok := localCommandMap[lt]
	if !ok {
		return nil, false
	}
	cmd := make([]string, 0, len(base)+1)
	cmd = append(cmd, base...)
	cmd = append(cmd, sourcePath)
	return cmd, true
}

// SupportsLocal reports whether the language can run on the host without a
// build step.
func (lt LanguageType) SupportsLocal() bool {
	_, ok := localCommandMap[lt]
	return ok
}

func SupportedLanguages() []string {
	return []string{Python.String(), JavaScript.String(), CPP.String(), Java.String()}
}
