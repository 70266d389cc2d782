package preview

import "errors"

// Session errors.
var (
	ErrPipelineBuild     = errors.New("preview: pipeline build failed")
	ErrStateChange       = errors.New("preview: state change rejected")
	ErrInvalidTransition = errors.New("preview: invalid transition")
	ErrSeekRejected      = errors.New("preview: seek rejected")
	ErrResync            = errors.New("preview: timeline resync failed")
)
