package segmentation

import "errors"

var (
	// ErrDecode reports an input file that is not a readable medical image.
	ErrDecode = errors.New("decode error")
	// ErrInference reports a failed model call or a malformed model output.
	ErrInference = errors.New("inference error")
)
