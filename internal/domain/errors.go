package domain

import "errors"

var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")

	ErrIdeaGeneration      = errors.New("failed to generate app idea")
	ErrThumbnailGeneration = errors.New("failed to generate thumbnail")
	ErrAppGeneration       = errors.New("failed to generate app")
	ErrSynthesisFailed     = errors.New("app generation failed")
	ErrSynthesisTimeout    = errors.New("generation timed out")
	ErrChatFetch           = errors.New("failed to fetch chat")
	ErrMessagesFetch       = errors.New("failed to fetch messages")
)
