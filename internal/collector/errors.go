package collector

import (
	"errors"
	"fmt"
)

// ErrCollection marks a collaborator that could not produce a reading.
var ErrCollection = errors.New("collection failure")

var errNoCPUData = errors.New("no cpu data")

type CollectionError struct {
	Source string
	Err    error
}

func (e *CollectionError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrCollection, e.Source, e.Err)
}

func (e *CollectionError) Unwrap() error { return e.Err }

func (e *CollectionError) Is(target error) bool { return target == ErrCollection }

func collectionErr(source string, err error) error {
	return &CollectionError{Source: source, Err: err}
}
