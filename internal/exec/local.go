package exec

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/coderank/judge/internal/logger"
	"github.com/coderank/judge/internal/runner"
	"github.com/coderank/judge/pkg/constants"
	"github.com/coderank/judge/pkg/languages"
)

// Local runs submitted code directly with the host interpreter. Only
// zero-build-step languages are supported; everything else is rejected with
// a uniform result rather than an error.
type Local struct {
	runner    runner.Runner
	overrides map[languages.LanguageType][]string
	logger    *zap.SugaredLogger
}

func NewLocal(r runner.Runner, overrides map[languages.LanguageType][]string) *Local {
	return &Local{
		runner:    r,
		overrides: overrides,
		logger:    logger.NewNamedLogger("local-exec"),
	}
}

func (l *Local) Name() string { return "local" }

// Run is the raw local-execution surface: it writes the code to a scoped
// temporary directory, invokes the interpreter with stdin piped in, and
// removes the directory on every exit path. The returned error covers
// infrastructure failures only (temp dir or source file creation).
func (l *Local) Run(
	ctx context.Context,
	lang languages.LanguageType,
	code, stdin string,
	opts Options,
) (runner.Result, error) {
	if !lang.SupportsLocal() {
		return runner.Result{
			Stderr:   fmt.Sprintf("unsupported language for local execution: %s", lang),
			ExitCode: constants.ExitCodeUnsupportedLanguage,
		}, nil
	}

	fileName, err := lang.SourceFileName()
	if err != nil {
		return runner.Result{
			Stderr:   fmt.Sprintf("unsupported language for local execution: %s", lang),
			ExitCode: constants.ExitCodeUnsupportedLanguage,
		}, nil
	}

	dir, err := os.MkdirTemp("", constants.TmpDirPrefix)
	if err != nil {
		return runner.Result{}, fmt.Errorf("failed to create temp directory: %w", err)
	}
	defer func() {
		if err := os.RemoveAll(dir); err != nil {
			l.logger.Errorf("failed to remove temp directory %s: %s", dir, err)
		}
	}()

	sourcePath := filepath.Join(dir, fileName)
	if err := os.WriteFile(sourcePath, []byte(code), 0644); err != nil {
		return runner.Result{}, fmt.Errorf("failed to write source file: %w", err)
	}

	argv := l.command(lang, sourcePath)

	timeoutMs := opts.TimeoutMs
	if timeoutMs <= 0 {
		timeoutMs = constants.DefaultLocalTimeoutMs
	}

	return l.runner.Run(ctx, argv[0], argv[1:], stdin, timeoutMs), nil
}

// Execute adapts Run to the strategy outcome shape.
func (l *Local) Execute(
	ctx context.Context,
	lang languages.LanguageType,
	code, stdin string,
	opts Options,
) (Outcome, error) {
	res, err := l.Run(ctx, lang, code, stdin, opts)
	if err != nil {
		return Outcome{}, err
	}
	return fromRunnerResult(res), nil
}

func (l *Local) command(lang languages.LanguageType, sourcePath string) []string {
	if base, ok := l.overrides[lang]; ok {
		argv := make([]string, 0, len(base)+1)
		argv = append(argv, base...)
		return append(argv, sourcePath)
	}
	argv, _ := lang.LocalCommand(sourcePath)
	return argv
}
