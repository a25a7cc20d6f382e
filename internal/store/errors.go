package store

import "errors"

var (
	ErrNotFound      = errors.New("booking not found")
	ErrAlreadyExists = errors.New("booking id already exists")
	ErrSlotTaken     = errors.New("slot already booked")

	ErrUserNotFound = errors.New("user not found")
	ErrEmailTaken   = errors.New("email already registered")

	ErrNotificationNotFound = errors.New("notification not found")
)
