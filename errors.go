package optik

import "errors"

var (
	// ErrNotInstantiable is returned by Class.New for abstract classes and
	// classes declared without a usable factory.
	ErrNotInstantiable = errors.New("class is not instantiable")

	// ErrClassNotFound is returned by operations that must resolve a class,
	// such as bind targets, when the registry has no match for the requested
	// name or type.
	ErrClassNotFound = errors.New("class not found")
)
