package cli

import "errors"

var (
	ErrUnknownStorageDriver = errors.New("unknown storage driver")
	ErrUnknownOutputFormat  = errors.New("unknown output format")
	ErrNothingStored        = errors.New("no file was stored")
)
