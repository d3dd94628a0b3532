package domain

import "errors"

var (
	ErrNotFound           = errors.New("not found")
	ErrNoJobID            = errors.New("generation service returned no job id")
	ErrNoResult           = errors.New("generation service returned no result url")
	ErrBoardDisabled      = errors.New("board publishing disabled")
	ErrInvalidPromptField = errors.New("invalid prompt field")
)
