package uc

import "errors"

var (
	ErrInvalidInput   = errors.New("invalid input")
	ErrActionNotFound = errors.New("action not found in catalog")
)
