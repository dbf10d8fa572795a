package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/coderank/judge/internal/config"
	"github.com/coderank/judge/internal/docker"
	"github.com/coderank/judge/internal/exec"
	"github.com/coderank/judge/internal/judge"
	"github.com/coderank/judge/internal/logger"
	"github.com/coderank/judge/internal/runner"
	"github.com/coderank/judge/internal/scoring"
	"github.com/coderank/judge/internal/service"
	"github.com/coderank/judge/internal/storage"
	"github.com/coderank/judge/internal/testbank"
	"github.com/coderank/judge/pkg/constants"
	"github.com/coderank/judge/pkg/languages"
)

func main() {
	log := logger.NewNamedLogger("main")

	problemID := flag.Int64("problem", 0, "problem id to judge against")
	lang := flag.String("lang", "python", "submission language")
	file := flag.String("file", "", "path to the solution source file")
	userID := flag.Int64("user", 1, "submitting user id")
	callStyle := flag.Bool("call", false, "function-call judging (solve() + harness)")
	rawRun := flag.Bool("run", false, "run the code once with stdin from the terminal, no judging")
	flag.Parse()

	if *file == "" {
		log.Fatal("-file is required")
	}
	code, err := os.ReadFile(*file)
	if err != nil {
		log.Fatalf("failed to read %s: %s", *file, err)
	}

	cfg := config.NewConfig()

	var dockerCli docker.DockerClient
	if cfg.ExecMode != constants.ExecModeLocal {
		dockerCli, err = docker.NewDockerClient()
		if err != nil {
			if cfg.ExecMode == constants.ExecModeSandbox {
				log.Fatalf("failed to initialize Docker client: %s", err)
			}
			log.Warnf("Docker unavailable, auto mode will fall back to local execution: %s", err)
		}
	}

	local := exec.NewLocal(runner.NewRunner(), cfg.InterpreterOverrides)
	sandbox := exec.NewSandbox(dockerCli, cfg.SandboxImagePrefix)
	chain := exec.ForMode(cfg.ExecMode, sandbox, local)

	ctx := context.Background()

	if *rawRun {
		stdin, err := io.ReadAll(os.Stdin)
		if err != nil {
			log.Fatalf("failed to read stdin: %s", err)
		}
		out, err := chain.Execute(ctx, languages.Resolve(*lang, cfg.FallbackLanguage), string(code), string(stdin), exec.Options{})
		if err != nil {
			log.Fatalf("execution failed: %s", err)
		}
		fmt.Printf("status: %s\n", out.Status)
		fmt.Print(out.Output)
		if out.Error != "" {
			fmt.Fprintln(os.Stderr, out.Error)
		}
		return
	}

	var store storage.Store
	var tests testbank.Repository
	if cfg.DatabaseURL != "" {
		pgStore, db, err := storage.NewPostgresStore(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("failed to connect to database: %s", err)
		}
		defer db.Close()
		store = pgStore
		tests = testbank.NewPostgresRepository(db)
	} else {
		log.Warn("DATABASE_URL is not set, using the embedded test bank and in-memory stores")
		store = storage.NewMemoryStore()
		tests = testbank.NewStaticRepository()
	}

	engine := judge.NewEngine(tests, chain, cfg.JudgeTimeoutMs)
	gate := scoring.NewGate(store)
	svc := service.NewSubmissionService(engine, gate, store, store, cfg.FallbackLanguage)

	result, err := svc.Submit(ctx, service.SubmitRequest{
		UserID:    *userID,
		ProblemID: *problemID,
		Language:  *lang,
		Code:      string(code),
		CallStyle: *callStyle,
	})
	if err != nil {
		log.Fatalf("judge error: %s", err)
	}

	fmt.Printf("verdict: %s  passed: %d/%d  xp: +%d\n",
		result.Verdict, result.Passed, result.Total, result.AddedXP)
	if len(result.Cases) > 0 {
		last := result.Cases[len(result.Cases)-1]
		if !last.OK {
			fmt.Printf("first failing case:\n  input: %q\n  expected: %q\n  got: %q\n", last.Input, last.Expected, last.Got)
			if last.Stderr != "" {
				fmt.Printf("  stderr: %s\n", last.Stderr)
			}
		}
	}
}
