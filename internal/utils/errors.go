package utils

import "errors"

// ----------------- cache ------------------
var (
	ErrCacheMiss = errors.New("cache miss")
)

// ----------------- rate limit ------------------
var (
	ErrRateLimitExceeded = errors.New("rate limit exceeded")
)
