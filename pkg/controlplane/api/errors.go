package api

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicateRoot is matched by every DuplicateRootError.
	ErrDuplicateRoot = errors.New("duplicate container root")

	// ErrConfiguration is matched by every ConfigurationError.
	ErrConfiguration = errors.New("invalid server configuration")
)

// DuplicateRootError reports two containers claiming the same URL root.
type DuplicateRootError struct {
	Root     string
	QualName string // container being added
	Existing string // container already holding Root
}

func (e *DuplicateRootError) Error() string {
	return fmt.Sprintf("container %s: root %s is already served by %s", e.QualName, e.Root, e.Existing)
}

func (e *DuplicateRootError) Is(target error) bool {
	return target == ErrDuplicateRoot
}

// ConfigurationError reports an invalid server setting.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ConfigurationError) Is(target error) bool {
	return target == ErrConfiguration
}
