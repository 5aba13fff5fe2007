//go:build !statsview
// +build !statsview

package statsview

import (
	"context"
	"errors"
	"io"
)

// ErrUnavailable is returned by Launch in builds without the statsview tag.
var ErrUnavailable = errors.New("statsview not available in this build")

// Launch reports that the stats server was not compiled in.
func Launch(context.Context, io.Writer) error {
	return ErrUnavailable
}

// Available returns true if a statsview is available to launch.
func Available() bool {
	return false
}
