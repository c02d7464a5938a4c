package domain

import "errors"

// Catalog errors
var (
	ErrAtelierNotFound    = errors.New("atelier not found")
	ErrCollectionNotFound = errors.New("collection not found")
	ErrChoiceNotFound     = errors.New("choice not found")
)

// Input errors
var (
	ErrInvalidTheme = errors.New("invalid theme")
	ErrInvalidPace  = errors.New("invalid pace")
)
