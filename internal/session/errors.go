package session

import "errors"

// Rejected operations leave the session unchanged and return one of these,
// possibly wrapped with context.
var (
	ErrInvalidOption     = errors.New("invalid option")
	ErrAnswerRequired    = errors.New("answer required")
	ErrUnknownQuestionID = errors.New("unknown question id")
	ErrInvalidTransition = errors.New("invalid transition")
)
