package entities

import "errors"

// ErrNotFound is returned by repositories when no description matches
var ErrNotFound = errors.New("description not found")
