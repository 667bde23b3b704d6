package registry

import "errors"

var (
	ErrInvalidStatus      = errors.New("invalid server status")
	ErrInvalidAdminAction = errors.New("invalid admin action")
	ErrInvalidScanOutput  = errors.New("invalid scan output")
)
