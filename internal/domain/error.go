package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound         = errors.New("entity not found")
	ErrInvalidSignature = errors.New("webhook signature verification failed")
	ErrMissingMetadata  = errors.New("missing required metadata")
	ErrDuplicateEvent   = errors.New("event already processed")
	ErrGenerationFailed = errors.New("generation request failed")
	ErrInvalidArgument  = errors.New("invalid argument")
	ErrStatusRegression = errors.New("status transition would regress")
)
