package services

import "errors"

var (
	// ErrNotInitialized is returned by every query path when the model build failed.
	ErrNotInitialized = errors.New("recommender not initialized")
	// ErrBuildUnavailable wraps source failures that make the whole model unusable.
	ErrBuildUnavailable = errors.New("recommender build unavailable")
	// ErrModelNotReady marks a content model that could not be built.
	ErrModelNotReady = errors.New("content model not ready")
	// ErrUnknownAnchor is returned for anchor products missing from the catalog.
	ErrUnknownAnchor = errors.New("anchor product not in catalog")
)
