package faults

import (
	"errors"
	"fmt"
)

type Class uint8

const (
	ClassNone Class = iota
	ClassSyntax
	ClassRuntime
	ClassTimeout
	ClassGeneration
	ClassConfiguration
)

func (c Class) String() string {
	switch c {
	case ClassSyntax:
		return "syntax"
	case ClassRuntime:
		return "runtime"
	case ClassTimeout:
		return "timeout"
	case ClassGeneration:
		return "generation"
	case ClassConfiguration:
		return "configuration"
	}
	return "none"
}

// Budgeted reports whether a fault of this class consumes the retry budget of a
// session. Generation and configuration faults are fatal instead.
func (c Class) Budgeted() bool {
	switch c {
	case ClassSyntax, ClassRuntime, ClassTimeout:
		return true
	}
	return false
}

type Fault struct {
	Class   Class
	Message string
}

var _ error = new(Fault)

func (f *Fault) Error() string {
	return fmt.Sprintf("%s fault: %s", f.Class, f.Message)
}

func New(class Class, format string, args ...any) *Fault {
	return &Fault{
		Class:   class,
		Message: fmt.Sprintf(format, args...),
	}
}

func As(err error) (*Fault, bool) {
	var fault *Fault
	if errors.As(err, &fault) {
		return fault, true
	}
	return nil, false
}
