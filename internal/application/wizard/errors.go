package wizard

import apperrors "quzz-ai-api/pkg/errors"

// 向导错误，errors.Is 按错误码匹配
var (
	ErrInvalidTransition    = apperrors.ErrInvalidTransition
	ErrInvalidTeam          = apperrors.New(apperrors.CodeInvalidParam, "invalid team data")
	ErrGenerationInProgress = apperrors.ErrGenerationInFlight
	ErrSessionNotFound      = apperrors.ErrSessionNotFound
	ErrSessionBusy          = apperrors.ErrSessionBusy
	ErrBlueprintNotReady    = apperrors.ErrBlueprintNotReady
	ErrInvalidState         = apperrors.New(apperrors.CodeInternalError, "inconsistent wizard state")
	ErrPersistFailed        = apperrors.New(apperrors.CodeInternalError, "failed to persist wizard session")
)
