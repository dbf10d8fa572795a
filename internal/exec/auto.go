package exec

import "github.com/coderank/judge/pkg/constants"

// NewAuto builds the sandbox-first chain: sandboxed execution when the
// runtime is available, local interpreter fallback when it is not. Program
// errors never trigger the fallback, only infrastructure errors do.
func NewAuto(sandbox *Sandbox, local *Local) *Chain {
	return NewChain(sandbox, local)
}

// ForMode builds the strategy chain for a configured execution mode.
func ForMode(mode string, sandbox *Sandbox, local *Local) *Chain {
	switch mode {
	case constants.ExecModeLocal:
		return NewChain(local)
	case constants.ExecModeSandbox:
		return NewChain(sandbox)
	default:
		return NewAuto(sandbox, local)
	}
}
