package entity

import "errors"

// Domain errors for lesson progression and related aggregates.
var (
	ErrInvalidChatID     = errors.New("invalid chat ID")
	ErrDayNotFound       = errors.New("lesson day not found")
	ErrNoActiveLesson    = errors.New("no active lesson")
	ErrNoActiveExercise  = errors.New("no active exercise")
	ErrNoChecklist       = errors.New("no checklist for chat")
	ErrLessonActive      = errors.New("lesson already in progress")
	ErrItemNotFound      = errors.New("curriculum item not found")
	ErrUnknownStrategy   = errors.New("unknown progression strategy")
	ErrEmptyStudentInput = errors.New("empty student input")
)
