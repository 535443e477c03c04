package model

import "errors"

// ErrNotFound indicates the forge answered 404 for the requested resource.
var ErrNotFound = errors.New("forge resource not found")
