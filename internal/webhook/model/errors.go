package model

import "errors"

var (
	// ErrMalformedPayload indicates that a webhook payload lacks a field its handler requires.
	ErrMalformedPayload = errors.New("malformed webhook payload")
	// ErrMissingEventKind indicates that the delivery carried no event kind header.
	ErrMissingEventKind = errors.New("missing event kind")
)
