package server

const (
	// Validation (1xxx)
	ErrCodeInvalidArgument = 1000
	ErrCodeInvalidJSON     = 1001
	ErrCodeRequestTooLarge = 1002
	ErrCodeInvalidSlotID   = 1004
	ErrCodeInvalidSceneID  = 1005
	ErrCodeInvalidImageID  = 1006
	ErrCodeMissingRequired = 1009
	ErrCodeInvalidImage    = 1010

	// Domain state (2xxx)
	ErrCodeSceneNotFound = 2001
	ErrCodeImageNotFound = 2002

	// Internal/system (4xxx)
	ErrCodeInternal     = 4001
	ErrCodeStoreFailure = 4002
)

func defaultErrorCodeByStatus(status int) int {
	switch status {
	case 400:
		return ErrCodeInvalidArgument
	case 404:
		return ErrCodeSceneNotFound
	case 413:
		return ErrCodeRequestTooLarge
	case 500:
		return ErrCodeInternal
	default:
		return 0
	}
}
