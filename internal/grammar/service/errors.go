package service

import "errors"

var errSpanOutOfRange = errors.New("match span runs past the submitted text")
