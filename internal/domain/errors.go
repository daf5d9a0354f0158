package domain

import "errors"

var (
	ErrAnchorNotFound = errors.New("anchor not found")
	ErrInvalidAnchor  = errors.New("invalid anchor")
)
