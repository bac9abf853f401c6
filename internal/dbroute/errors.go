package dbroute

import "errors"

var (
	// ErrAlreadyLoaded is returned by Loader.Load on every call after the
	// first successful one.
	ErrAlreadyLoaded = errors.New("dbroute: route table already loaded")

	// ErrControllerLoad wraps a controller Load failure during discovery.
	ErrControllerLoad = errors.New("dbroute: controller failed to load")

	// ErrDuplicate indicates an insert violated the natural-key index.
	ErrDuplicate = errors.New("dbroute: duplicate route natural key")

	// ErrNoEntitySource is returned when a discovered entity type has no
	// registered finder.
	ErrNoEntitySource = errors.New("dbroute: no entity source registered")
)
