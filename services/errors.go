package services

import "errors"

var (
	// ErrJobNotFound reports an unschedule or cancel for a post with no
	// active trigger. Non-fatal: unscheduling twice simply reports this.
	ErrJobNotFound = errors.New("scheduler: job not found")

	// ErrPostNotFound reports an operation on a post id absent from the store.
	ErrPostNotFound = errors.New("scheduler: post not found")

	// ErrInvalidSchedule reports a trigger specification that failed
	// validation, which only happens on malformed timezone or clock input.
	ErrInvalidSchedule = errors.New("scheduler: invalid trigger specification")
)
