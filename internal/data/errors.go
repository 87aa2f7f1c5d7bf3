package data

import "errors"

// ErrUserRepoNotConfigured is returned by helpers that need a database but were given none.
var ErrUserRepoNotConfigured = errors.New("user repository not configured")
