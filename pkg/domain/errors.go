package domain

import "errors"

// ErrStepFailed is returned when an entity's step function fails.
var ErrStepFailed = errors.New("step failed")

// ErrAlreadyConnected is returned when a clock is connected a second time.
var ErrAlreadyConnected = errors.New("clock already connected")

// ErrNoScene is returned by scene readers before the first scene is published.
var ErrNoScene = errors.New("no scene published yet")
