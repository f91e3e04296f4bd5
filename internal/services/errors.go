package services

// Service errors
var (
	ErrScoringClosed      = &ServiceError{Message: "scoring is currently closed"}
	ErrJudgeNotAssigned   = &ServiceError{Message: "judge is not assigned to this pageant"}
	ErrContestantInactive = &ServiceError{Message: "contestant is not active"}
	ErrCriteriaMismatch   = &ServiceError{Message: "criteria does not belong to the given round"}
	ErrRoundMismatch      = &ServiceError{Message: "round does not belong to the given pageant"}
	ErrUnknownStage       = &ServiceError{Message: "pageant has no rounds of the requested stage type"}
	ErrNoFinalStage       = &ServiceError{Message: "pageant has no rounds configured"}
	ErrUnknownAccessCode  = &ServiceError{Message: "access code is not registered"}
)

// ServiceError represents a service-level error
type ServiceError struct {
	Message string
}

func (e *ServiceError) Error() string {
	return e.Message
}
