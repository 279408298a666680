package registry

import "errors"

// ErrIncompatible signals that a loader was asked to load a representation
// it does not support. The builder treats it as a soft failure and moves on
// to the next loader; callers should branch on it with errors.Is.
var ErrIncompatible = errors.New("loader is not compatible with representation")
