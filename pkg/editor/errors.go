package editor

import (
	"errors"

	"github.com/user/clipedit/pkg/asset"
	"github.com/user/clipedit/pkg/preview"
	"github.com/user/clipedit/pkg/timeline"
)

// Processor errors.
var (
	ErrClosed         = errors.New("editor: processor closed")
	ErrAlreadyRunning = errors.New("editor: processor already running")
	ErrPanic          = errors.New("editor: command panicked")
)

// Kind groups command failures by who can fix them.
type Kind int

const (
	KindUnknown Kind = iota
	// KindInput is caller-correctable; nothing was changed.
	KindInput
	// KindEngine depends on the environment or the media engine.
	KindEngine
	// KindProtocol is a command that made no sense in the current state.
	KindProtocol
)

func (k Kind) String() string {
	switch k {
	case KindInput:
		return "input"
	case KindEngine:
		return "engine"
	case KindProtocol:
		return "protocol"
	default:
		return "unknown"
	}
}

// MarshalText encodes the kind by name.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Classify maps a command error to its Kind.
func Classify(err error) Kind {
	switch {
	case err == nil:
		return KindUnknown
	case errors.Is(err, timeline.ErrInvalidPlacement),
		errors.Is(err, timeline.ErrLayerAccess),
		errors.Is(err, asset.ErrPathNotFound):
		return KindInput
	case errors.Is(err, asset.ErrProbeFailed),
		errors.Is(err, preview.ErrPipelineBuild),
		errors.Is(err, preview.ErrStateChange),
		errors.Is(err, preview.ErrSeekRejected),
		errors.Is(err, preview.ErrResync):
		return KindEngine
	case errors.Is(err, preview.ErrInvalidTransition):
		return KindProtocol
	default:
		return KindUnknown
	}
}

// Failure describes a command that did not succeed.
type Failure struct {
	Command     string `json:"command"`
	Err         error  `json:"-"`
	Message     string `json:"message"`
	Kind        Kind   `json:"kind"`
	UserVisible bool   `json:"userVisible"`
}
