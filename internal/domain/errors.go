package domain

import "errors"

// ErrDuplicate is returned by repositories when a unique key such as an
// animal tag or device serial is already taken.
var ErrDuplicate = errors.New("already exists")
