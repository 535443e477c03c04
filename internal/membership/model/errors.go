// Package model provides membership errors.
package model

import "errors"

// ErrTeamNotFound indicates the privileged reviewer team does not exist in the
// organization. It is a configuration error, never a negative answer.
var ErrTeamNotFound = errors.New("core team not found")
