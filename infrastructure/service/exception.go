package service

import "errors"

// ErrUnprocessableEntity marks a request the processor permanently rejects;
// retrying it is pointless.
var ErrUnprocessableEntity = errors.New("unprocessable entity")
