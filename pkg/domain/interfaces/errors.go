package interfaces

import "github.com/m-mizutani/goerr/v2"

var (
	// ErrNotFound is returned by repositories when no record has the requested ID
	ErrNotFound = goerr.New("not found")
)
