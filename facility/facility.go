package facility

import (
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/mhbka/distributed-booking/common"
)

// Booking is a time interval on a single day. Both endpoints count as
// occupied for overlap checks (see Overlaps).
type Booking struct {
	Start common.Time
	End   common.Time
}

// NewBooking validates and constructs a Booking: start must precede end,
// and both endpoints must fall on the same day.
func NewBooking(start, end common.Time) (Booking, error) {
	if !start.Less(end) {
		return Booking{}, &InvariantError{
			Reason: fmt.Sprintf("start time (%s) must be before end time (%s)", start, end),
		}
	}
	if start.Day != end.Day {
		return Booking{}, &InvariantError{
			Reason: fmt.Sprintf("booking cannot cross days (start %s, end %s)", start, end),
		}
	}
	return Booking{Start: start, End: end}, nil
}

// Overlaps reports whether the closed intervals [b.Start, b.End] and
// [other.Start, other.End] intersect.
func (b Booking) Overlaps(other Booking) bool {
	return (b.Start.LessEqual(other.Start) && other.Start.LessEqual(b.End)) ||
		(other.Start.LessEqual(b.Start) && b.Start.LessEqual(other.End))
}

type bookingEntry struct {
	id      uuid.UUID
	booking Booking
}

// Facility is a named bookable resource holding an ordered sequence of
// bookings. The name is immutable once constructed.
type Facility struct {
	Name     string
	bookings []bookingEntry
}

// New constructs an empty facility.
func New(name string) *Facility {
	return &Facility{Name: name}
}

func (f *Facility) indexOf(id uuid.UUID) int {
	for i, e := range f.bookings {
		if e.id == id {
			return i
		}
	}
	return -1
}

func (f *Facility) anyOverlap(booking Booking) bool {
	for _, e := range f.bookings {
		if e.booking.Overlaps(booking) {
			return true
		}
	}
	return false
}

// AddNewBooking allocates a fresh BookingId and inserts booking, rejecting
// it if it overlaps any existing booking.
func (f *Facility) AddNewBooking(booking Booking) (uuid.UUID, error) {
	if f.anyOverlap(booking) {
		return uuid.UUID{}, &OverlapError{
			Reason: fmt.Sprintf("new booking (%s - %s) overlaps with at least 1 current booking", booking.Start, booking.End),
		}
	}
	id := uuid.New()
	f.bookings = append(f.bookings, bookingEntry{id: id, booking: booking})
	return id, nil
}

// AddBookingWithID inserts booking under the given id, used by rollback
// paths in OffsetBooking/ExtendBooking. Errors if the id already exists or
// the booking overlaps an existing one.
func (f *Facility) AddBookingWithID(id uuid.UUID, booking Booking) error {
	if f.indexOf(id) != -1 {
		return &DuplicateIDError{BookingID: id}
	}
	if f.anyOverlap(booking) {
		return &OverlapError{
			Reason: fmt.Sprintf("new booking (%s - %s) overlaps with at least 1 current booking", booking.Start, booking.End),
		}
	}
	f.bookings = append(f.bookings, bookingEntry{id: id, booking: booking})
	return nil
}

// Get looks up a booking by id.
func (f *Facility) Get(id uuid.UUID) (Booking, bool) {
	idx := f.indexOf(id)
	if idx == -1 {
		return Booking{}, false
	}
	return f.bookings[idx].booking, true
}

// Remove deletes and returns the booking with the given id.
func (f *Facility) Remove(id uuid.UUID) (Booking, error) {
	idx := f.indexOf(id)
	if idx == -1 {
		return Booking{}, &NotFoundError{BookingID: id}
	}
	booking := f.bookings[idx].booking
	f.bookings = append(f.bookings[:idx], f.bookings[idx+1:]...)
	return booking, nil
}

// OffsetBooking shifts both endpoints of the booking with the given id by
// +/- (hours, minutes). The shifted booking must stay on the original
// booking's day. The operation is atomic: on overlap or a day-
// boundary violation, the original booking is restored and an error is
// returned; observers never see the booking missing except transiently
// within this call.
func (f *Facility) OffsetBooking(id uuid.UUID, hours common.Hour, minutes common.Minute, negative bool) error {
	original, err := f.Remove(id)
	if err != nil {
		return err
	}

	shifted, err := NewBooking(
		original.Start.Offset(hours, minutes, negative),
		original.End.Offset(hours, minutes, negative),
	)
	if err == nil && shifted.Start.Day != original.Start.Day {
		err = &InvariantError{
			Reason: fmt.Sprintf("offset would move booking off %s (new start %s)", original.Start.Day, shifted.Start),
		}
	}
	if err != nil {
		if reinsertErr := f.AddBookingWithID(id, original); reinsertErr != nil {
			return reinsertErr
		}
		return err
	}

	if err := f.AddBookingWithID(id, shifted); err != nil {
		if reinsertErr := f.AddBookingWithID(id, original); reinsertErr != nil {
			return reinsertErr
		}
		return err
	}
	return nil
}

// ExtendBooking shifts only the end time of the booking with the given id
// later by (hours, minutes); same atomicity guarantee as OffsetBooking.
func (f *Facility) ExtendBooking(id uuid.UUID, hours common.Hour, minutes common.Minute) error {
	original, err := f.Remove(id)
	if err != nil {
		return err
	}

	newEnd := original.End.Offset(hours, minutes, false)
	extended, err := NewBooking(original.Start, newEnd)
	if err != nil {
		if reinsertErr := f.AddBookingWithID(id, original); reinsertErr != nil {
			return reinsertErr
		}
		return err
	}

	if err := f.AddBookingWithID(id, extended); err != nil {
		if reinsertErr := f.AddBookingWithID(id, original); reinsertErr != nil {
			return reinsertErr
		}
		return err
	}
	return nil
}

// Availabilities returns the day's free intervals as a formatted,
// 1-indexed enumerated list: "i. Day, HH:MM - HH:MM", covering
// [00:00, 23:59] and complementary to the day's bookings.
func (f *Facility) Availabilities(day common.Day) string {
	var dayBookings []Booking
	for _, e := range f.bookings {
		if e.booking.Start.Day == day {
			dayBookings = append(dayBookings, e.booking)
		}
	}
	sort.Slice(dayBookings, func(i, j int) bool {
		return dayBookings[i].Start.Less(dayBookings[j].Start)
	})

	dayStart := common.Time{Day: day, Hour: 0, Minute: 0}
	dayEnd := common.Time{Day: day, Hour: 23, Minute: 59}

	var lines []string
	current := dayStart
	for _, b := range dayBookings {
		if current.Less(b.Start) {
			lines = append(lines, fmt.Sprintf("%d. %s - %02d:%02d", len(lines)+1, current, b.Start.Hour, b.Start.Minute))
		}
		if current.Less(b.End) {
			current = b.End
		}
	}
	if current.Less(dayEnd) {
		lines = append(lines, fmt.Sprintf("%d. %s - %02d:%02d", len(lines)+1, current, dayEnd.Hour, dayEnd.Minute))
	}

	if len(lines) == 0 {
		return "Fully booked"
	}
	result := ""
	for i, line := range lines {
		if i > 0 {
			result += "\n"
		}
		result += line
	}
	return result
}
