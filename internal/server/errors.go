package server

import "errors"

var (
	ErrEmptyAuthorizationHeader   = errors.New("empty Authorization header")
	ErrInvalidAuthorizationHeader = errors.New("invalid Authorization header")
	ErrHandshakeExpected          = errors.New("first frame must be capabilities")
)

// Protocol error codes carried in error frames.
const (
	codeBadFrame    = "bad_frame"
	codeApplyFailed = "apply_failed"
	codeSyncFailed  = "sync_failed"
)
