package engine

import "errors"

var (
	// ErrBusy means another action or choice is still being resolved.
	ErrBusy = errors.New("session busy")
	// ErrRejected means the input is not valid in the current status.
	ErrRejected = errors.New("input rejected")
)
