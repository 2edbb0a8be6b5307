package domain

import "errors"

// Taxonomia de errores del motor. Las fallas de parseo de salida de IA NO
// estan aca: degradan a resultados parciales en vez de propagarse.
var (
	ErrContextUnavailable = errors.New("user context unavailable")
	ErrExecutionFailed    = errors.New("ai execution failed")
	ErrResultNotFound     = errors.New("action result not found")
	ErrNoMessagesFound    = errors.New("no messages found in screenshot")
	ErrFeedbackRecorded   = errors.New("feedback already recorded for result")
)
