package graph

import "errors"

// Common sentinel errors
var (
	ErrNodeNotFound  = errors.New("node not found")
	ErrDuplicateNode = errors.New("duplicate node ID")
)
