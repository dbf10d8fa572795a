package errs

import "errors"

// Error messages.
var (
	ErrInvalidLanguage     = errors.New("invalid language identifier")
	ErrNoTestsDefined      = errors.New("no tests defined for this problem")
	ErrProblemNotFound     = errors.New("problem not found")
	ErrHarnessMissing      = errors.New("harness missing for this problem")
	ErrSandboxUnavailable  = errors.New("sandbox runtime unavailable")
	ErrSandboxTimeout      = errors.New("sandbox container timed out")
	ErrUserNotFound        = errors.New("user not found")
	ErrNoStrategyAvailable = errors.New("no execution strategy available")
)
