package status

import "errors"

var (
	ErrNotFound          = errors.New("record not found")
	ErrTempleNotFound    = errors.New("temple: temple not found")
	ErrSlotFull          = errors.New("booking: time slot is full")
	ErrSlotPassed        = errors.New("booking: time slot has already passed or starts too soon")
	ErrInvalidTimeSlot   = errors.New("booking: invalid time slot format")
	ErrInvalidTransition = errors.New("status: transition not allowed")
	ErrAlreadyInQueue    = errors.New("queue: booking already has a queue entry")
	ErrNotInQueue        = errors.New("queue: no queue entry for booking")
)
