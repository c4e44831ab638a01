package types

import "errors"

var (
	ErrDuplicateSubmission = errors.New("submission with this CPF already exists")
	ErrSubmissionNotFound  = errors.New("submission not found")
)
