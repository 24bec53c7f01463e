package binding

import "errors"

// ErrConfig is wrapped by every error reporting a missing required option
var ErrConfig = errors.New("binding: configuration error")
