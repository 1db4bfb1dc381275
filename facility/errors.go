// Package facility implements the in-memory booking store for a single
// facility: overlap-checked creation, lookup, removal, and atomic
// offset/extend mutation, plus the free/booked interval formatting used by
// the Availability operation.
package facility

import (
	"fmt"

	"github.com/google/uuid"
)

// NotFoundError reports that a booking ID does not exist in the facility.
type NotFoundError struct {
	BookingID uuid.UUID
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("booking %s could not be found", e.BookingID)
}

// OverlapError reports that a booking would intersect an existing one.
type OverlapError struct {
	Reason string
}

func (e *OverlapError) Error() string { return e.Reason }

// InvariantError reports a malformed booking: start >= end, or a booking
// spanning more than one day.
type InvariantError struct {
	Reason string
}

func (e *InvariantError) Error() string { return e.Reason }

// DuplicateIDError reports that a booking ID is already present in the
// facility's booking sequence (only reachable via AddBookingWithID rollback
// paths, since AddNewBooking always allocates a fresh ID).
type DuplicateIDError struct {
	BookingID uuid.UUID
}

func (e *DuplicateIDError) Error() string {
	return fmt.Sprintf("booking %s already exists", e.BookingID)
}
