package domain

import "errors"

var (
	ErrNotFound     = errors.New("task not found")
	ErrNotCompleted = errors.New("task not completed")
)
