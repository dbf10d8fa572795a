package constants

// Exit codes.
const (
	ExitCodeSuccess             = 0
	ExitCodeUnsupportedLanguage = 2
	ExitCodeTimeLimitExceeded   = 124
	ExitCodeLaunchFailure       = 127
)

// Execution defaults (milliseconds).
const (
	DefaultLocalTimeoutMs   = 5_000
	DefaultSandboxTimeoutMs = 30_000
	DefaultJudgeTimeoutMs   = 4_000
)

// Captured stdout/stderr are cut off past this many bytes.
const (
	MaxCapturedOutputBytes = 1 << 20
	TruncationMarker       = "... [output truncated]"
)

const MessageTimeLimitExceeded = "Time Limit Exceeded"

// Execution modes.
const (
	ExecModeLocal   = "local"
	ExecModeSandbox = "sandbox"
	ExecModeAuto    = "auto"
)

// Sandbox constants.
const (
	DefaultSandboxImagePrefix = "coderank"
	SandboxWorkDir            = "/app"
	TmpDirPrefix              = "coderank-"
	ContainerStopTimeoutSec   = 2
	ContainerMemoryBytes      = 256 * 1024 * 1024
	ContainerPidsLimit        = 64
)

// Submission status values as stored on the submissions row.
const (
	SubmissionStatusSuccess = "success"
	SubmissionStatusFailed  = "failed"
)

// Configuration defaults.
const (
	DefaultExecMode         = ExecModeAuto
	DefaultFallbackLanguage = "python"
)

// Harness composition.
const HarnessSeparator = "\n\n"
