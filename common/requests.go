package common

import (
	"fmt"

	"github.com/google/uuid"
)

// Request type discriminants, fixed by the wire protocol.
const (
	ReqAvailability uint8 = 0
	ReqBook         uint8 = 1
	ReqOffset       uint8 = 2
	ReqMonitor      uint8 = 3
	ReqCancel       uint8 = 4
	ReqExtend       uint8 = 5
)

// RequestType is the tagged union of every request payload the wire
// protocol carries: a u8 discriminant followed by the variant's fields.
type RequestType interface {
	requestDiscriminant() uint8
	encodePayload(*Encoder) error
	isRequestType()
}

// RawRequest is the envelope every client send is wrapped in.
type RawRequest struct {
	RequestID uuid.UUID
	Type      RequestType
}

// EncodeTime writes a Time as 3 bytes: Day, Hour, Minute.
func EncodeTime(e *Encoder, t Time) {
	e.U8(uint8(t.Day))
	e.U8(uint8(t.Hour))
	e.U8(uint8(t.Minute))
}

// DecodeTime reads a 3-byte Time, validating each ordinal.
func DecodeTime(d *Decoder) (Time, error) {
	dayRaw, err := d.U8()
	if err != nil {
		return Time{}, newDecodeError("time.day", err)
	}
	day, err := NewDay(dayRaw)
	if err != nil {
		return Time{}, newDecodeError("time.day", err)
	}
	hourRaw, err := d.U8()
	if err != nil {
		return Time{}, newDecodeError("time.hour", err)
	}
	hour, err := NewHour(hourRaw)
	if err != nil {
		return Time{}, newDecodeError("time.hour", err)
	}
	minRaw, err := d.U8()
	if err != nil {
		return Time{}, newDecodeError("time.minute", err)
	}
	minute, err := NewMinute(minRaw)
	if err != nil {
		return Time{}, newDecodeError("time.minute", err)
	}
	return Time{Day: day, Hour: hour, Minute: minute}, nil
}

// AvailabilityRequest asks for a facility's free/booked intervals on a set of days.
type AvailabilityRequest struct {
	FacilityName string
	Days         []Day
}

func (AvailabilityRequest) isRequestType()             {}
func (AvailabilityRequest) requestDiscriminant() uint8  { return ReqAvailability }
func (r AvailabilityRequest) encodePayload(e *Encoder) error {
	if err := e.String(r.FacilityName); err != nil {
		return err
	}
	if len(r.Days) > 0xFFFF {
		return fmt.Errorf("day list too long to encode (%d entries)", len(r.Days))
	}
	e.Seq(func(sub *Encoder) {
		for _, d := range r.Days {
			sub.U8(uint8(d))
		}
	})
	return nil
}

func decodeAvailabilityRequest(d *Decoder) (AvailabilityRequest, error) {
	name, err := d.String()
	if err != nil {
		return AvailabilityRequest{}, newDecodeError("availability.facility_name", err)
	}
	var days []Day
	err = d.Seq(func(sub *Decoder) error {
		raw, err := sub.U8()
		if err != nil {
			return newDecodeError("availability.days element", err)
		}
		day, err := NewDay(raw)
		if err != nil {
			return newDecodeError("availability.days element", err)
		}
		days = append(days, day)
		return nil
	})
	if err != nil {
		return AvailabilityRequest{}, err
	}
	return AvailabilityRequest{FacilityName: name, Days: days}, nil
}

// BookRequest asks to create a new booking on a facility.
type BookRequest struct {
	FacilityName string
	Start        Time
	End          Time
}

func (BookRequest) isRequestType()            {}
func (BookRequest) requestDiscriminant() uint8 { return ReqBook }
func (r BookRequest) encodePayload(e *Encoder) error {
	if err := e.String(r.FacilityName); err != nil {
		return err
	}
	EncodeTime(e, r.Start)
	EncodeTime(e, r.End)
	return nil
}

func decodeBookRequest(d *Decoder) (BookRequest, error) {
	name, err := d.String()
	if err != nil {
		return BookRequest{}, newDecodeError("book.facility_name", err)
	}
	start, err := DecodeTime(d)
	if err != nil {
		return BookRequest{}, err
	}
	end, err := DecodeTime(d)
	if err != nil {
		return BookRequest{}, err
	}
	return BookRequest{FacilityName: name, Start: start, End: end}, nil
}

// OffsetBookingRequest asks to shift an existing booking by +/- (hours, minutes).
type OffsetBookingRequest struct {
	BookingID uuid.UUID
	Hours     Hour
	Minutes   Minute
	Negative  bool
}

func (OffsetBookingRequest) isRequestType()            {}
func (OffsetBookingRequest) requestDiscriminant() uint8 { return ReqOffset }
func (r OffsetBookingRequest) encodePayload(e *Encoder) error {
	e.UUID(r.BookingID)
	e.U8(uint8(r.Hours))
	e.U8(uint8(r.Minutes))
	e.Bool(r.Negative)
	return nil
}

func decodeOffsetBookingRequest(d *Decoder) (OffsetBookingRequest, error) {
	id, err := d.UUID()
	if err != nil {
		return OffsetBookingRequest{}, newDecodeError("offset.booking_id", err)
	}
	hourRaw, err := d.U8()
	if err != nil {
		return OffsetBookingRequest{}, newDecodeError("offset.dh", err)
	}
	hour, err := NewHour(hourRaw)
	if err != nil {
		return OffsetBookingRequest{}, newDecodeError("offset.dh", err)
	}
	minRaw, err := d.U8()
	if err != nil {
		return OffsetBookingRequest{}, newDecodeError("offset.dm", err)
	}
	minute, err := NewMinute(minRaw)
	if err != nil {
		return OffsetBookingRequest{}, newDecodeError("offset.dm", err)
	}
	negative, err := d.Bool()
	if err != nil {
		return OffsetBookingRequest{}, newDecodeError("offset.negative", err)
	}
	return OffsetBookingRequest{BookingID: id, Hours: hour, Minutes: minute, Negative: negative}, nil
}

// MonitorFacilityRequest registers a short-lived subscription for updates
// to a facility's bookings.
type MonitorFacilityRequest struct {
	FacilityName string
	Seconds      uint8
}

func (MonitorFacilityRequest) isRequestType()            {}
func (MonitorFacilityRequest) requestDiscriminant() uint8 { return ReqMonitor }
func (r MonitorFacilityRequest) encodePayload(e *Encoder) error {
	if err := e.String(r.FacilityName); err != nil {
		return err
	}
	e.U8(r.Seconds)
	return nil
}

func decodeMonitorFacilityRequest(d *Decoder) (MonitorFacilityRequest, error) {
	name, err := d.String()
	if err != nil {
		return MonitorFacilityRequest{}, newDecodeError("monitor.facility_name", err)
	}
	seconds, err := d.U8()
	if err != nil {
		return MonitorFacilityRequest{}, newDecodeError("monitor.seconds", err)
	}
	return MonitorFacilityRequest{FacilityName: name, Seconds: seconds}, nil
}

// CancelBookingRequest asks to remove a booking by ID.
type CancelBookingRequest struct {
	BookingID uuid.UUID
}

func (CancelBookingRequest) isRequestType()            {}
func (CancelBookingRequest) requestDiscriminant() uint8 { return ReqCancel }
func (r CancelBookingRequest) encodePayload(e *Encoder) error {
	e.UUID(r.BookingID)
	return nil
}

func decodeCancelBookingRequest(d *Decoder) (CancelBookingRequest, error) {
	id, err := d.UUID()
	if err != nil {
		return CancelBookingRequest{}, newDecodeError("cancel.booking_id", err)
	}
	return CancelBookingRequest{BookingID: id}, nil
}

// ExtendBookingRequest asks to push a booking's end time later by (hours, minutes).
type ExtendBookingRequest struct {
	BookingID uuid.UUID
	Hours     Hour
	Minutes   Minute
}

func (ExtendBookingRequest) isRequestType()            {}
func (ExtendBookingRequest) requestDiscriminant() uint8 { return ReqExtend }
func (r ExtendBookingRequest) encodePayload(e *Encoder) error {
	e.UUID(r.BookingID)
	e.U8(uint8(r.Hours))
	e.U8(uint8(r.Minutes))
	return nil
}

func decodeExtendBookingRequest(d *Decoder) (ExtendBookingRequest, error) {
	id, err := d.UUID()
	if err != nil {
		return ExtendBookingRequest{}, newDecodeError("extend.booking_id", err)
	}
	hourRaw, err := d.U8()
	if err != nil {
		return ExtendBookingRequest{}, newDecodeError("extend.dh", err)
	}
	hour, err := NewHour(hourRaw)
	if err != nil {
		return ExtendBookingRequest{}, newDecodeError("extend.dh", err)
	}
	minRaw, err := d.U8()
	if err != nil {
		return ExtendBookingRequest{}, newDecodeError("extend.dm", err)
	}
	minute, err := NewMinute(minRaw)
	if err != nil {
		return ExtendBookingRequest{}, newDecodeError("extend.dm", err)
	}
	return ExtendBookingRequest{BookingID: id, Hours: hour, Minutes: minute}, nil
}

// EncodeRequest serializes a RawRequest per the wire protocol. It fails if a
// variable-length field (e.g. a facility name) exceeds the wire format's
// u16 length prefix.
func EncodeRequest(req RawRequest) ([]byte, error) {
	e := NewEncoder()
	e.UUID(req.RequestID)
	e.U8(req.Type.requestDiscriminant())
	if err := req.Type.encodePayload(e); err != nil {
		return nil, fmt.Errorf("encoding request payload: %w", err)
	}
	return e.Bytes(), nil
}

// DecodeRequest deserializes a RawRequest, failing on truncation, an
// unknown discriminant, or an invalid field.
func DecodeRequest(data []byte) (RawRequest, error) {
	d := NewDecoder(data)
	id, err := d.UUID()
	if err != nil {
		return RawRequest{}, newDecodeError("request_id", err)
	}
	disc, err := d.U8()
	if err != nil {
		return RawRequest{}, newDecodeError("request type discriminant", err)
	}

	var reqType RequestType
	switch disc {
	case ReqAvailability:
		reqType, err = decodeAvailabilityRequest(d)
	case ReqBook:
		reqType, err = decodeBookRequest(d)
	case ReqOffset:
		reqType, err = decodeOffsetBookingRequest(d)
	case ReqMonitor:
		reqType, err = decodeMonitorFacilityRequest(d)
	case ReqCancel:
		reqType, err = decodeCancelBookingRequest(d)
	case ReqExtend:
		reqType, err = decodeExtendBookingRequest(d)
	default:
		return RawRequest{}, newDecodeError(fmt.Sprintf("unknown request discriminant %d", disc), nil)
	}
	if err != nil {
		return RawRequest{}, err
	}
	return RawRequest{RequestID: id, Type: reqType}, nil
}
