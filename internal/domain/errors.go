package domain

import "errors"

// Sentinel errors shared across layers.
var (
	ErrNotFound          = errors.New("record not found")
	ErrUnknownFamily     = errors.New("unknown entity family")
	ErrReindexRunning    = errors.New("reindex already running for this family")
	ErrEngineUnavailable = errors.New("search engine unavailable")
)
