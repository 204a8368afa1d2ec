package alert

import "errors"

var (
	ErrMissingFields  = errors.New("missing required fields")
	ErrInvalidLevel   = errors.New("invalid distress level")
	ErrDispatchFailed = errors.New("notification dispatch failed")
)
