package nav

import (
	"errors"
	"fmt"
	"net/url"
)

var (
	ErrExternalTarget   = errors.New("nav: external target must be a fully-qualified url")
	ErrInvalidOperation = errors.New("nav: invalid operation mode/stack combination")
)

// Mode says where a navigation lands relative to the current view.
type Mode uint8

const (
	// ModeIntraView stays in the current view and only patches location.
	ModeIntraView Mode = iota + 1
	// ModeInterView mounts a different view.
	ModeInterView
	// ModeExternal leaves the application entirely.
	ModeExternal
)

func (m Mode) String() string {
	switch m {
	case ModeIntraView:
		return "intra_view"
	case ModeInterView:
		return "inter_view"
	case ModeExternal:
		return "external"
	default:
		return fmt.Sprintf("mode(%d)", uint8(m))
	}
}

// StackOp says how a navigation affects client history.
type StackOp uint8

const (
	StackPush StackOp = iota + 1
	StackReplace
	StackRedirect
)

func (s StackOp) String() string {
	switch s {
	case StackPush:
		return "push"
	case StackReplace:
		return "replace"
	case StackRedirect:
		return "redirect"
	default:
		return fmt.Sprintf("stack(%d)", uint8(s))
	}
}

// Operation is one navigation intent: a (mode, stack) pair plus a
// resolved target. The constructors below are the only producers, and
// they only produce the six valid pairs. An Operation is consumed
// exactly once by converting it to a HostInstruction.
type Operation struct {
	mode     Mode
	stack    StackOp
	url      URL
	external string
}

// PushPatch stays in the current view, pushing a new history entry or
// replacing the current one.
func PushPatch(target URL, replace bool) Operation {
	stack := StackPush
	if replace {
		stack = StackReplace
	}
	return Operation{mode: ModeIntraView, stack: stack, url: target}
}

// PushNavigate mounts a different view, pushing a new history entry or
// replacing the current one.
func PushNavigate(target URL, replace bool) Operation {
	stack := StackPush
	if replace {
		stack = StackReplace
	}
	return Operation{mode: ModeInterView, stack: stack, url: target}
}

// RedirectTo hard-redirects to an internal target.
func RedirectTo(target URL) Operation {
	return Operation{mode: ModeInterView, stack: StackRedirect, url: target}
}

// RedirectExternal hard-redirects out of the application. The target
// must be a fully-qualified URL string; it is validated for shape here
// and later handed to the host verbatim, never re-parsed or re-encoded.
func RedirectExternal(target string) (Operation, error) {
	parsed, err := url.Parse(target)
	if err != nil {
		return Operation{}, fmt.Errorf("%w: %v", ErrExternalTarget, err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return Operation{}, fmt.Errorf("%w: %q", ErrExternalTarget, target)
	}
	return Operation{mode: ModeExternal, stack: StackRedirect, external: target}, nil
}

func (op Operation) Mode() Mode       { return op.mode }
func (op Operation) StackOp() StackOp { return op.stack }

// TargetURL returns the resolved internal target. It reports false for
// external operations, whose target is an opaque string.
func (op Operation) TargetURL() (URL, bool) {
	if op.mode == ModeExternal {
		return URL{}, false
	}
	return op.url, true
}

// InstructionKind is the host call an applied Operation maps to.
type InstructionKind uint8

const (
	InstructionPatchLocation InstructionKind = iota + 1
	InstructionNavigateToView
	InstructionHardRedirect
)

func (k InstructionKind) String() string {
	switch k {
	case InstructionPatchLocation:
		return "patch-location"
	case InstructionNavigateToView:
		return "navigate-to-view"
	case InstructionHardRedirect:
		return "hard-redirect"
	default:
		return fmt.Sprintf("instruction(%d)", uint8(k))
	}
}

// HostInstruction is the single outbound call the host performs for an
// applied Operation. Replace is meaningful for patch and navigate only.
type HostInstruction struct {
	Kind    InstructionKind
	Target  string
	Replace bool
}

// Instruction maps the operation to its host call. The mapping is total
// and injective over the six pairs the constructors produce; any other
// combination is an internal invariant violation.
func (op Operation) Instruction() (HostInstruction, error) {
	switch {
	case op.mode == ModeIntraView && op.stack == StackPush:
		return HostInstruction{Kind: InstructionPatchLocation, Target: op.url.RelativeTarget()}, nil
	case op.mode == ModeIntraView && op.stack == StackReplace:
		return HostInstruction{Kind: InstructionPatchLocation, Target: op.url.RelativeTarget(), Replace: true}, nil
	case op.mode == ModeInterView && op.stack == StackPush:
		return HostInstruction{Kind: InstructionNavigateToView, Target: op.url.RelativeTarget()}, nil
	case op.mode == ModeInterView && op.stack == StackReplace:
		return HostInstruction{Kind: InstructionNavigateToView, Target: op.url.RelativeTarget(), Replace: true}, nil
	case op.mode == ModeInterView && op.stack == StackRedirect:
		return HostInstruction{Kind: InstructionHardRedirect, Target: op.url.RelativeTarget()}, nil
	case op.mode == ModeExternal && op.stack == StackRedirect:
		return HostInstruction{Kind: InstructionHardRedirect, Target: op.external}, nil
	default:
		return HostInstruction{}, fmt.Errorf("%w: %s/%s", ErrInvalidOperation, op.mode, op.stack)
	}
}
