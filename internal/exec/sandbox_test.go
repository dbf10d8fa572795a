package exec_test

import (
	"bufio"
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"io"
	"net"
	"strings"
	"testing"

	"github.com/docker/docker/api/types"
	"go.uber.org/mock/gomock"

	mocks "github.com/coderank/judge/internal/docker/mocks"
	. "github.com/coderank/judge/internal/exec"
	"github.com/coderank/judge/pkg/constants"
	"github.com/coderank/judge/pkg/errs"
	"github.com/coderank/judge/pkg/languages"
)

// stdcopyFrame encodes one multiplexed stream chunk the way the Docker
// attach protocol does: stream byte, three zero bytes, big-endian length,
// then the payload.
func stdcopyFrame(stream byte, payload string) []byte {
	frame := make([]byte, 8+len(payload))
	frame[0] = stream
	binary.BigEndian.PutUint32(frame[4:8], uint32(len(payload)))
	copy(frame[8:], payload)
	return frame
}

// fakeAttach builds a hijacked response whose read side replays the given
// frames and whose write side is drained in the background, so stdin writes
// never block.
func fakeAttach(t *testing.T, frames ...[]byte) types.HijackedResponse {
	t.Helper()
	client, server := net.Pipe()
	go func() {
		_, _ = io.Copy(io.Discard, server)
	}()
	t.Cleanup(func() {
		client.Close()
		server.Close()
	})
	var buf bytes.Buffer
	for _, f := range frames {
		buf.Write(f)
	}
	return types.HijackedResponse{Conn: client, Reader: bufio.NewReader(&buf)}
}

// blockedAttach builds a hijacked response whose write side is never
// drained, like a container that never reads its stdin. Any write blocks
// until the stream is closed.
func blockedAttach(t *testing.T, frames ...[]byte) types.HijackedResponse {
	t.Helper()
	client, server := net.Pipe()
	t.Cleanup(func() {
		client.Close()
		server.Close()
	})
	var buf bytes.Buffer
	for _, f := range frames {
		buf.Write(f)
	}
	return types.HijackedResponse{Conn: client, Reader: bufio.NewReader(&buf)}
}

func TestSandbox_NilClientIsUnavailable(t *testing.T) {
	sandbox := NewSandbox(nil, "coderank")
	_, err := sandbox.Execute(context.Background(), languages.Python, "print(1)", "", Options{})
	if !errors.Is(err, errs.ErrSandboxUnavailable) {
		t.Fatalf("expected ErrSandboxUnavailable, got %v", err)
	}
}

func TestSandbox_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockDocker := mocks.NewMockDockerClient(ctrl)
	attach := fakeAttach(t, stdcopyFrame(1, "7\n"))

	gomock.InOrder(
		mockDocker.EXPECT().EnsureImage(gomock.Any(), "coderank-python").Return(nil).Times(1),
		mockDocker.EXPECT().CreateContainer(
			gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(),
		).Return("cid123", nil).Times(1),
		mockDocker.EXPECT().AttachContainer(gomock.Any(), "cid123").Return(attach, nil).Times(1),
		mockDocker.EXPECT().StartContainer(gomock.Any(), "cid123").Return(nil).Times(1),
		mockDocker.EXPECT().WaitContainer(gomock.Any(), "cid123", gomock.Any()).Return(int64(0), nil).Times(1),
		mockDocker.EXPECT().ContainerRemove(gomock.Any(), "cid123").Return(nil).Times(1),
	)

	sandbox := NewSandbox(mockDocker, "coderank")
	out, err := sandbox.Execute(context.Background(), languages.Python, "print(3+4)", "3 4\n", Options{})
	if err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if out.Status != StatusSuccess {
		t.Fatalf("expected success, got %s (error: %q)", out.Status, out.Error)
	}
	if out.Output != "7\n" {
		t.Fatalf("expected output %q, got %q", "7\n", out.Output)
	}
	if out.ExitCode != 0 {
		t.Fatalf("expected exit 0, got %d", out.ExitCode)
	}
}

func TestSandbox_NonZeroExit(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockDocker := mocks.NewMockDockerClient(ctrl)
	attach := fakeAttach(t, stdcopyFrame(2, "Traceback: boom\n"))

	gomock.InOrder(
		mockDocker.EXPECT().EnsureImage(gomock.Any(), gomock.Any()).Return(nil).Times(1),
		mockDocker.EXPECT().CreateContainer(
			gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(),
		).Return("cid456", nil).Times(1),
		mockDocker.EXPECT().AttachContainer(gomock.Any(), "cid456").Return(attach, nil).Times(1),
		mockDocker.EXPECT().StartContainer(gomock.Any(), "cid456").Return(nil).Times(1),
		mockDocker.EXPECT().WaitContainer(gomock.Any(), "cid456", gomock.Any()).Return(int64(1), nil).Times(1),
		mockDocker.EXPECT().ContainerRemove(gomock.Any(), "cid456").Return(nil).Times(1),
	)

	sandbox := NewSandbox(mockDocker, "coderank")
	out, err := sandbox.Execute(context.Background(), languages.Python, "raise Exception('boom')", "", Options{})
	if err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if out.Status != StatusError {
		t.Fatalf("expected error status, got %s", out.Status)
	}
	if out.ExitCode != 1 {
		t.Fatalf("expected exit 1, got %d", out.ExitCode)
	}
	if !strings.Contains(out.Error, "boom") {
		t.Fatalf("expected stderr in error, got %q", out.Error)
	}
}

func TestSandbox_Timeout(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockDocker := mocks.NewMockDockerClient(ctrl)
	attach := fakeAttach(t)

	gomock.InOrder(
		mockDocker.EXPECT().EnsureImage(gomock.Any(), gomock.Any()).Return(nil).Times(1),
		mockDocker.EXPECT().CreateContainer(
			gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(),
		).Return("cid789", nil).Times(1),
		mockDocker.EXPECT().AttachContainer(gomock.Any(), "cid789").Return(attach, nil).Times(1),
		mockDocker.EXPECT().StartContainer(gomock.Any(), "cid789").Return(nil).Times(1),
		mockDocker.EXPECT().WaitContainer(gomock.Any(), "cid789", gomock.Any()).Return(int64(-1), errs.ErrSandboxTimeout).Times(1),
		mockDocker.EXPECT().ContainerKill(gomock.Any(), "cid789", "SIGKILL").Return(nil).Times(1),
		mockDocker.EXPECT().ContainerRemove(gomock.Any(), "cid789").Return(nil).Times(1),
	)

	sandbox := NewSandbox(mockDocker, "coderank")
	out, err := sandbox.Execute(context.Background(), languages.Python, "while True: pass", "", Options{TimeoutMs: 100})
	if err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if !out.TimedOut {
		t.Fatalf("expected timed out outcome, got %+v", out)
	}
	if out.ExitCode != constants.ExitCodeTimeLimitExceeded {
		t.Fatalf("expected exit %d, got %d", constants.ExitCodeTimeLimitExceeded, out.ExitCode)
	}
	if out.Error != constants.MessageTimeLimitExceeded {
		t.Fatalf("expected %q, got %q", constants.MessageTimeLimitExceeded, out.Error)
	}
}

func TestSandbox_StdinNeverReadStillTimesOut(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockDocker := mocks.NewMockDockerClient(ctrl)
	attach := blockedAttach(t)

	gomock.InOrder(
		mockDocker.EXPECT().EnsureImage(gomock.Any(), gomock.Any()).Return(nil).Times(1),
		mockDocker.EXPECT().CreateContainer(
			gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(),
		).Return("cidblk", nil).Times(1),
		mockDocker.EXPECT().AttachContainer(gomock.Any(), "cidblk").Return(attach, nil).Times(1),
		mockDocker.EXPECT().StartContainer(gomock.Any(), "cidblk").Return(nil).Times(1),
		mockDocker.EXPECT().WaitContainer(gomock.Any(), "cidblk", gomock.Any()).Return(int64(-1), errs.ErrSandboxTimeout).Times(1),
		mockDocker.EXPECT().ContainerKill(gomock.Any(), "cidblk", "SIGKILL").Return(nil).Times(1),
		mockDocker.EXPECT().ContainerRemove(gomock.Any(), "cidblk").Return(nil).Times(1),
	)

	sandbox := NewSandbox(mockDocker, "coderank")
	stdin := strings.Repeat("x", 1<<16)
	out, err := sandbox.Execute(context.Background(), languages.Python, "import time; time.sleep(60)", stdin, Options{TimeoutMs: 100})
	if err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if !out.TimedOut {
		t.Fatalf("expected the timeout to fire with stdin unread, got %+v", out)
	}
	if out.ExitCode != constants.ExitCodeTimeLimitExceeded {
		t.Fatalf("expected exit %d, got %d", constants.ExitCodeTimeLimitExceeded, out.ExitCode)
	}
}

func TestSandbox_RemovesTempDirOnEveryPath(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("TMPDIR", tmp)

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockDocker := mocks.NewMockDockerClient(ctrl)
	attach := fakeAttach(t, stdcopyFrame(1, "ok\n"))

	gomock.InOrder(
		mockDocker.EXPECT().EnsureImage(gomock.Any(), gomock.Any()).Return(nil).Times(1),
		mockDocker.EXPECT().CreateContainer(
			gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(),
		).Return("cidtmp", nil).Times(1),
		mockDocker.EXPECT().AttachContainer(gomock.Any(), "cidtmp").Return(attach, nil).Times(1),
		mockDocker.EXPECT().StartContainer(gomock.Any(), "cidtmp").Return(nil).Times(1),
		mockDocker.EXPECT().WaitContainer(gomock.Any(), "cidtmp", gomock.Any()).Return(int64(0), nil).Times(1),
		mockDocker.EXPECT().ContainerRemove(gomock.Any(), "cidtmp").Return(nil).Times(1),
		// a second execution that dies before the container exists
		mockDocker.EXPECT().EnsureImage(gomock.Any(), gomock.Any()).Return(errors.New("pull denied")).Times(1),
	)

	sandbox := NewSandbox(mockDocker, "coderank")
	ctx := context.Background()

	if _, err := sandbox.Execute(ctx, languages.Python, "print('ok')", "", Options{}); err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if _, err := sandbox.Execute(ctx, languages.Python, "print('ok')", "", Options{}); err == nil {
		t.Fatalf("expected an infrastructure error from the second execution")
	}

	if n := leftoverTmpDirs(t, tmp); n != 0 {
		t.Fatalf("expected no scratch directories left behind, found %d", n)
	}
}

func TestSandbox_ImagePullFailureIsInfraError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockDocker := mocks.NewMockDockerClient(ctrl)
	mockDocker.EXPECT().EnsureImage(gomock.Any(), gomock.Any()).Return(errors.New("pull denied")).Times(1)

	sandbox := NewSandbox(mockDocker, "coderank")
	_, err := sandbox.Execute(context.Background(), languages.Python, "print(1)", "", Options{})
	if !errors.Is(err, errs.ErrSandboxUnavailable) {
		t.Fatalf("expected ErrSandboxUnavailable, got %v", err)
	}
}

func TestSandbox_CleanExitWithStderrIsSuccess(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockDocker := mocks.NewMockDockerClient(ctrl)
	attach := fakeAttach(t, stdcopyFrame(1, "answer\n"), stdcopyFrame(2, "deprecation warning\n"))

	gomock.InOrder(
		mockDocker.EXPECT().EnsureImage(gomock.Any(), gomock.Any()).Return(nil).Times(1),
		mockDocker.EXPECT().CreateContainer(
			gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(),
		).Return("cid000", nil).Times(1),
		mockDocker.EXPECT().AttachContainer(gomock.Any(), "cid000").Return(attach, nil).Times(1),
		mockDocker.EXPECT().StartContainer(gomock.Any(), "cid000").Return(nil).Times(1),
		mockDocker.EXPECT().WaitContainer(gomock.Any(), "cid000", gomock.Any()).Return(int64(0), nil).Times(1),
		mockDocker.EXPECT().ContainerRemove(gomock.Any(), "cid000").Return(nil).Times(1),
	)

	sandbox := NewSandbox(mockDocker, "coderank")
	out, err := sandbox.Execute(context.Background(), languages.Python, "print('answer')", "", Options{})
	if err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if out.Status != StatusSuccess {
		t.Fatalf("expected success, got %s", out.Status)
	}
	if out.Output != "answer\n" {
		t.Fatalf("expected output preserved, got %q", out.Output)
	}
	if !strings.Contains(out.Error, "deprecation warning") {
		t.Fatalf("expected stderr carried on success, got %q", out.Error)
	}
}
