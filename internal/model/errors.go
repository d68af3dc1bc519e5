package model

import "errors"

var (
	ErrPrincipalNotFound = errors.New("principal not found")
	ErrEmailTaken        = errors.New("email already registered")
	ErrGrantNotFound     = errors.New("grant not found")
	ErrCollectionMissing = errors.New("collection not found")
	ErrItemNotFound      = errors.New("item not found")
	ErrInvalidInput      = errors.New("invalid input")
)
