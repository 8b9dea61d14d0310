package inference

import (
	"errors"
	"fmt"
)

var ErrUnknownClass = errors.New("class index has no label")

// ShapeError reports a vector whose width does not match a fitted artifact.
type ShapeError struct {
	Stage string
	Want  int
	Got   int
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("%s expects %d features, got %d", e.Stage, e.Want, e.Got)
}
