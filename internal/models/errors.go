package models

import "errors"

// ErrNotFound is returned by lookups and mutations that name an unknown
// vehicle or booking id. Callers branch on it with errors.Is.
var ErrNotFound = errors.New("not found")
