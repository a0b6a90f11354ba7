package spatial

import "errors"

var (
	ErrNoAvlReport = errors.New("vehicle has no avl report")
)
