package config

import (
	"errors"
	"os"
	"strconv"

	"github.com/google/shlex"
	"github.com/joho/godotenv"

	"github.com/coderank/judge/internal/logger"
	"github.com/coderank/judge/pkg/constants"
	"github.com/coderank/judge/pkg/languages"
)

type Config struct {
	// DatabaseURL selects the Postgres-backed stores when set. Empty means
	// the embedded test bank and in-memory stores.
	DatabaseURL string

	ExecMode           string
	SandboxImagePrefix string
	FallbackLanguage   string

	LocalTimeoutMs   int64
	SandboxTimeoutMs int64
	JudgeTimeoutMs   int64

	// InterpreterOverrides replaces the default local interpreter invocation
	// per language, e.g. PYTHON_CMD="python3 -u".
	InterpreterOverrides map[languages.LanguageType][]string
}

func NewConfig() *Config {
	log := logger.NewNamedLogger("config")

	if _, err := os.Stat(".env"); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			log.Fatalf("failed to stat .env file with error: %v", err)
		}
	} else {
		if err := godotenv.Load(".env"); err != nil {
			log.Fatalf("failed to load .env file with error: %v", err)
		}
	}

	execMode := os.Getenv("EXEC_MODE")
	switch execMode {
	case constants.ExecModeLocal, constants.ExecModeSandbox, constants.ExecModeAuto:
	case "":
		execMode = constants.DefaultExecMode
		log.Warnf("EXEC_MODE is not set, using default value %s", constants.DefaultExecMode)
	default:
		log.Fatalf("EXEC_MODE %q is not one of local, sandbox, auto", execMode)
	}

	imagePrefix := os.Getenv("SANDBOX_IMAGE_PREFIX")
	if imagePrefix == "" {
		imagePrefix = constants.DefaultSandboxImagePrefix
		log.Warnf("SANDBOX_IMAGE_PREFIX is not set, using default value %s", constants.DefaultSandboxImagePrefix)
	}

	fallback := os.Getenv("FALLBACK_LANGUAGE")
	if fallback == "" {
		fallback = constants.DefaultFallbackLanguage
	} else if _, err := languages.Parse(fallback); err != nil {
		log.Fatalf("FALLBACK_LANGUAGE %q is not a known language", fallback)
	}

	return &Config{
		DatabaseURL:          os.Getenv("DATABASE_URL"),
		ExecMode:             execMode,
		SandboxImagePrefix:   imagePrefix,
		FallbackLanguage:     fallback,
		LocalTimeoutMs:       timeoutFromEnv(log, "LOCAL_TIMEOUT_MS", constants.DefaultLocalTimeoutMs),
		SandboxTimeoutMs:     timeoutFromEnv(log, "SANDBOX_TIMEOUT_MS", constants.DefaultSandboxTimeoutMs),
		JudgeTimeoutMs:       timeoutFromEnv(log, "JUDGE_TIMEOUT_MS", constants.DefaultJudgeTimeoutMs),
		InterpreterOverrides: interpreterOverrides(log),
	}
}

func timeoutFromEnv(log interface{ Fatalf(string, ...interface{}) }, key string, def int64) int64 {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v <= 0 {
		log.Fatalf("failed to parse %s=%q as a positive integer", key, raw)
	}
	return v
}

// interpreterOverrides reads PYTHON_CMD / NODE_CMD and splits them with shell
// quoting rules, so values like NODE_CMD="node --max-old-space-size=64" work.
func interpreterOverrides(log interface{ Fatalf(string, ...interface{}) }) map[languages.LanguageType][]string {
	overrides := make(map[languages.LanguageType][]string)
	for env, lt := range map[string]languages.LanguageType{
		"PYTHON_CMD": languages.Python,
		"NODE_CMD":   languages.JavaScript,
	} {
		raw := os.Getenv(env)
		if raw == "" {
			continue
		}
		parts, err := shlex.Split(raw)
		if err != nil || len(parts) == 0 {
			log.Fatalf("failed to parse %s=%q: %v", env, raw, err)
		}
		overrides[lt] = parts
	}
	return overrides
}
