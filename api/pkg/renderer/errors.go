package renderer

import "errors"

// Per-frame failures. The frame is dropped and the pipeline keeps its last valid state.
var (
	ErrImportFailed        = errors.New("buffer import failed")
	ErrFramebufferAdd      = errors.New("framebuffer add failed")
	ErrCommitRejected      = errors.New("commit rejected")
	ErrUnsupportedFormat   = errors.New("unsupported shared-memory format")
	ErrUnknownProperty     = errors.New("unknown property")
	ErrUnsupportedRotation = errors.New("unsupported rotation")
)

// ErrFlipPending is returned, wrapped in ErrCommitRejected, when a commit is
// attempted while the previous one has not completed yet.
var ErrFlipPending = errors.New("page flip already pending")

// errShownWithoutFlip marks a rejected legacy commit whose SETCRTC already put
// the framebuffer on screen: no completion event will follow, but the buffer is
// being scanned out.
var errShownWithoutFlip = errors.New("framebuffer shown by mode set, page flip failed")

// Setup failures.
var (
	ErrBufferManager   = errors.New("buffer manager unavailable")
	ErrUnknownRenderer = errors.New("unknown renderer")
	ErrNotInitialized  = errors.New("renderer not initialized")
	ErrNoProducer      = errors.New("no producer attached")
)
