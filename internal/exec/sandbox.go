package exec

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/pkg/stdcopy"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/coderank/judge/internal/docker"
	"github.com/coderank/judge/internal/logger"
	"github.com/coderank/judge/internal/runner"
	"github.com/coderank/judge/pkg/constants"
	"github.com/coderank/judge/pkg/errs"
	"github.com/coderank/judge/pkg/languages"
)

var containerNameRegex = regexp.MustCompile("[^a-zA-Z0-9_.-]")

// Sandbox runs submitted code inside an isolated container with the source
// directory bind-mounted as its working volume. Failures of the sandbox
// itself (daemon unreachable, image missing) are errors; failures of the
// program are outcomes.
type Sandbox struct {
	docker      docker.DockerClient
	imagePrefix string
	logger      *zap.SugaredLogger
}

func NewSandbox(dCli docker.DockerClient, imagePrefix string) *Sandbox {
	if imagePrefix == "" {
		imagePrefix = constants.DefaultSandboxImagePrefix
	}
	return &Sandbox{
		docker:      dCli,
		imagePrefix: imagePrefix,
		logger:      logger.NewNamedLogger("sandbox-exec"),
	}
}

func (s *Sandbox) Name() string { return "sandbox" }

func (s *Sandbox) Execute(
	ctx context.Context,
	lang languages.LanguageType,
	code, stdin string,
	opts Options,
) (Outcome, error) {
	if s.docker == nil {
		return Outcome{}, errs.ErrSandboxUnavailable
	}

	image, err := lang.SandboxImage(s.imagePrefix)
	if err != nil {
		return Outcome{
			Status:   StatusError,
			Error:    fmt.Sprintf("unsupported language: %s", lang),
			ExitCode: 1,
		}, nil
	}
	fileName, _ := lang.SourceFileName()

	timeoutMs := opts.TimeoutMs
	if timeoutMs <= 0 {
		timeoutMs = constants.DefaultSandboxTimeoutMs
	}

	dir, err := os.MkdirTemp("", constants.TmpDirPrefix)
	if err != nil {
		return Outcome{}, fmt.Errorf("failed to create temp directory: %w", err)
	}
	defer func() {
		if err := os.RemoveAll(dir); err != nil {
			s.logger.Errorf("failed to remove temp directory %s: %s", dir, err)
		}
	}()

	if err := os.WriteFile(filepath.Join(dir, fileName), []byte(code), 0644); err != nil {
		return Outcome{}, fmt.Errorf("failed to write source file: %w", err)
	}

	if err := s.docker.EnsureImage(ctx, image); err != nil {
		return Outcome{}, fmt.Errorf("%w: %s", errs.ErrSandboxUnavailable, err)
	}

	containerID, err := s.docker.CreateContainer(
		ctx,
		buildContainerConfig(image),
		buildHostConfig(dir),
		sanitizeContainerName(uuid.NewString()),
	)
	if err != nil {
		return Outcome{}, fmt.Errorf("%w: %s", errs.ErrSandboxUnavailable, err)
	}

	defer func() {
		cleanupCtx, cleanupCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cleanupCancel()
		if err := s.docker.ContainerRemove(cleanupCtx, containerID); err != nil {
			s.logger.Errorf("failed to remove container %s: %s", containerID, err)
		}
	}()

	attach, err := s.docker.AttachContainer(ctx, containerID)
	if err != nil {
		return Outcome{}, fmt.Errorf("%w: %s", errs.ErrSandboxUnavailable, err)
	}
	defer attach.Close()

	stdout := runner.NewCappedBuffer(constants.MaxCapturedOutputBytes)
	stderr := runner.NewCappedBuffer(constants.MaxCapturedOutputBytes)
	copyDone := make(chan struct{})
	go func() {
		defer close(copyDone)
		if _, err := stdcopy.StdCopy(stdout, stderr, attach.Reader); err != nil {
			s.logger.Debugf("container stream copy ended: %s", err)
		}
	}()

	if err := s.docker.StartContainer(ctx, containerID); err != nil {
		return Outcome{}, fmt.Errorf("%w: %s", errs.ErrSandboxUnavailable, err)
	}

	// The program may never read stdin, so the write must not block this
	// goroutine: the wait below is the only bounded blocking point. The
	// timeout branch closes the attach stream, which unblocks a stuck writer.
	go func() {
		if _, err := attach.Conn.Write([]byte(stdin)); err != nil {
			s.logger.Warnf("failed to write stdin to container %s: %s", containerID, err)
		}
		if err := attach.CloseWrite(); err != nil {
			s.logger.Debugf("failed to close container stdin %s: %s", containerID, err)
		}
	}()

	exitCode, waitErr := s.docker.WaitContainer(ctx, containerID, time.Duration(timeoutMs)*time.Millisecond)
	if waitErr != nil {
		if errors.Is(waitErr, errs.ErrSandboxTimeout) {
			if err := s.docker.ContainerKill(ctx, containerID, "SIGKILL"); err != nil {
				s.logger.Errorf("failed to kill container %s: %s", containerID, err)
			}
			attach.Close()
			<-copyDone
			return Outcome{
				Status:   StatusError,
				Output:   stdout.String(),
				Error:    constants.MessageTimeLimitExceeded,
				ExitCode: constants.ExitCodeTimeLimitExceeded,
				TimedOut: true,
			}, nil
		}
		return Outcome{}, fmt.Errorf("%w: %s", errs.ErrSandboxUnavailable, waitErr)
	}

	attach.Close()
	<-copyDone

	out := Outcome{
		Output:   stdout.String(),
		Error:    stderr.String(),
		ExitCode: int(exitCode),
	}
	if exitCode == constants.ExitCodeSuccess {
		// A clean exit with stderr content still reports success; the error
		// text rides along for the caller to interpret.
		out.Status = StatusSuccess
	} else {
		out.Status = StatusError
		if out.Error == "" {
			out.Error = fmt.Sprintf("exit %d", exitCode)
		}
	}
	return out, nil
}

func buildContainerConfig(image string) *container.Config {
	stopTimeout := constants.ContainerStopTimeoutSec

	return &container.Config{
		Image:        image,
		WorkingDir:   constants.SandboxWorkDir,
		OpenStdin:    true,
		StdinOnce:    true,
		AttachStdin:  true,
		AttachStdout: true,
		AttachStderr: true,
		StopTimeout:  &stopTimeout,
		StopSignal:   "SIGKILL",
	}
}

func buildHostConfig(sourceDir string) *container.HostConfig {
	return &container.HostConfig{
		AutoRemove:  false,
		Binds:       []string{sourceDir + ":" + constants.SandboxWorkDir},
		NetworkMode: container.NetworkMode("none"),
		Resources: container.Resources{
			Memory:     constants.ContainerMemoryBytes,
			MemorySwap: constants.ContainerMemoryBytes,
			PidsLimit:  func(v int64) *int64 { return &v }(constants.ContainerPidsLimit),
			CPUPeriod:  100_000,
			CPUQuota:   100_000,
		},
		SecurityOpt:  []string{"no-new-privileges"},
		CgroupnsMode: container.CgroupnsModePrivate,
		IpcMode:      container.IpcMode("private"),
		CapDrop:      []string{"ALL"},
	}
}

func sanitizeContainerName(raw string) string {
	cleaned := containerNameRegex.ReplaceAllString(raw, "-")
	if cleaned == "" {
		cleaned = "untitled"
	}
	return "submission-" + cleaned
}
