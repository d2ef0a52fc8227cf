package services

import "errors"

var (
	ErrSubjectNotFound  = errors.New("subject not found")
	ErrSessionNotFound  = errors.New("exam session not found")
	ErrQuestionNotFound = errors.New("question not found")
	ErrOptionNotFound   = errors.New("option not found")
	ErrSessionCompleted = errors.New("exam session already completed")
	ErrNotSessionOwner  = errors.New("not the owner of this exam session")
)
