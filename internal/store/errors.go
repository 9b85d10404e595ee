package store

import "errors"

var (
	ErrNotFound = errors.New("there is no")
	ErrStorage  = errors.New("the local database failed to process the request")
)
