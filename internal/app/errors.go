package service

import "errors"

// Sentinel errors returned by the service.
var (
	ErrNoCredential  = errors.New("no narrative credential configured")
	ErrNotStarted    = errors.New("service not started")
	ErrUnknownIntent = errors.New("unknown intent")
)
