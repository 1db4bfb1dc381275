package main

import (
	"fmt"
	"net"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/mhbka/distributed-booking/common"
	"github.com/mhbka/distributed-booking/facility"
)

// dispatcher exclusively owns the facilities sequence and the monitor
// subscription sequence (spec.md §3, "Ownership"). It runs a
// single-threaded receive -> handle -> send loop; handling a request,
// including any monitor fan-out, is atomic from decode to response
// transmit (spec.md §5).
type dispatcher struct {
	facilities map[string]*facility.Facility
	monitors   *monitorRegistry
	transport  *serverTransport
}

func newDispatcher(transport *serverTransport, facilityNames []string) *dispatcher {
	facilities := make(map[string]*facility.Facility, len(facilityNames))
	for _, name := range facilityNames {
		facilities[name] = facility.New(name)
	}
	return &dispatcher{
		facilities: facilities,
		monitors:   newMonitorRegistry(),
		transport:  transport,
	}
}

// run is the server's single-threaded cooperative loop: receive, handle,
// send. There are no locks because there is no sharing.
func (d *dispatcher) run() {
	for {
		req, peer, err := d.transport.receive()
		if err != nil {
			log.Error().Err(err).Msg("receive failed")
			continue
		}
		resp := d.handle(req, peer)
		d.transport.send(resp, peer)
	}
}

// handle dispatches a decoded request to the matching facility operation
// and forms the RawResponse to send back.
func (d *dispatcher) handle(req common.RawRequest, peer *net.UDPAddr) common.RawResponse {
	var message string
	var err error

	switch t := req.Type.(type) {
	case common.AvailabilityRequest:
		message, err = d.handleAvailability(t)
	case common.BookRequest:
		message, err = d.handleBook(t)
	case common.OffsetBookingRequest:
		message, err = d.handleOffset(t)
	case common.MonitorFacilityRequest:
		message, err = d.handleMonitor(t, peer)
	case common.CancelBookingRequest:
		message, err = d.handleCancel(t)
	case common.ExtendBookingRequest:
		message, err = d.handleExtend(t)
	default:
		err = fmt.Errorf("unhandled request type %T", req.Type)
	}

	if err != nil {
		return common.RawResponse{RequestID: req.RequestID, IsError: true, Message: err.Error()}
	}
	return common.RawResponse{RequestID: req.RequestID, IsError: false, Message: message}
}

func (d *dispatcher) handleAvailability(req common.AvailabilityRequest) (string, error) {
	fac, ok := d.facilities[req.FacilityName]
	if !ok {
		return "", fmt.Errorf("facility '%s' not found", req.FacilityName)
	}

	days := sortedUniqueDays(req.Days)
	var sb strings.Builder
	for _, day := range days {
		sb.WriteString(fmt.Sprintf("-----\n %s\n -----\n", fac.Availabilities(day)))
	}
	return sb.String(), nil
}

func (d *dispatcher) handleBook(req common.BookRequest) (string, error) {
	fac, ok := d.facilities[req.FacilityName]
	if !ok {
		return "", fmt.Errorf("facility '%s' not found", req.FacilityName)
	}

	booking, err := facility.NewBooking(req.Start, req.End)
	if err != nil {
		return "", err
	}
	id, err := fac.AddNewBooking(booking)
	if err != nil {
		return "", err
	}

	d.sendMonitorMessage(req.FacilityName, req.Start.Day)
	return fmt.Sprintf("Successfully added new booking with ID: %s", id), nil
}

func (d *dispatcher) handleOffset(req common.OffsetBookingRequest) (string, error) {
	for name, fac := range d.facilities {
		booking, ok := fac.Get(req.BookingID)
		if !ok {
			continue
		}
		day := booking.Start.Day
		if err := fac.OffsetBooking(req.BookingID, req.Hours, req.Minutes, req.Negative); err != nil {
			return "", err
		}
		d.sendMonitorMessage(name, day)
		return fmt.Sprintf("Facility %s successfully offset booking %s", name, req.BookingID), nil
	}
	return "", fmt.Errorf("no booking ID %s found in any facility", req.BookingID)
}

func (d *dispatcher) handleExtend(req common.ExtendBookingRequest) (string, error) {
	for name, fac := range d.facilities {
		booking, ok := fac.Get(req.BookingID)
		if !ok {
			continue
		}
		day := booking.Start.Day
		if err := fac.ExtendBooking(req.BookingID, req.Hours, req.Minutes); err != nil {
			return "", err
		}
		d.sendMonitorMessage(name, day)
		return fmt.Sprintf("Facility %s successfully extended booking %s", name, req.BookingID), nil
	}
	return "", fmt.Errorf("no booking ID %s found in any facility", req.BookingID)
}

func (d *dispatcher) handleCancel(req common.CancelBookingRequest) (string, error) {
	for name, fac := range d.facilities {
		booking, ok := fac.Get(req.BookingID)
		if !ok {
			continue
		}
		day := booking.Start.Day
		if _, err := fac.Remove(req.BookingID); err != nil {
			return "", err
		}
		d.sendMonitorMessage(name, day)
		return fmt.Sprintf("Canceled booking %s", req.BookingID), nil
	}
	return "", fmt.Errorf("no booking ID %s found in any facility", req.BookingID)
}

func (d *dispatcher) handleMonitor(req common.MonitorFacilityRequest, peer *net.UDPAddr) (string, error) {
	if _, ok := d.facilities[req.FacilityName]; !ok {
		return "", fmt.Errorf("facility '%s' not found", req.FacilityName)
	}
	d.monitors.register(peer, req.FacilityName, req.Seconds, time.Now())
	return fmt.Sprintf("Monitoring %s for %d seconds.", req.FacilityName, req.Seconds), nil
}

// sendMonitorMessage evicts expired subscriptions, then notifies every
// remaining subscriber of facilityName with the day's updated
// availabilities. Sent before the triggering request's own response
// (spec.md §5, "Ordering guarantees"), since this runs synchronously
// inside the mutating handler before handle returns. Failures are logged,
// never propagated (spec.md §7).
func (d *dispatcher) sendMonitorMessage(facilityName string, day common.Day) {
	fac, ok := d.facilities[facilityName]
	if !ok {
		return
	}
	addrs := d.monitors.matching(facilityName, time.Now())
	if len(addrs) == 0 {
		return
	}

	message := fmt.Sprintf("A booking was updated on %s; new availabilities: %s", day, fac.Availabilities(day))
	response := common.RawResponse{RequestID: uuid.New(), IsError: false, Message: message}

	for _, addr := range addrs {
		d.transport.send(response, addr)
		log.Debug().Str("peer", addr.String()).Str("facility", facilityName).Msg("sent monitor notification")
	}
}

func sortedUniqueDays(days []common.Day) []common.Day {
	seen := make(map[common.Day]bool, len(days))
	unique := make([]common.Day, 0, len(days))
	for _, d := range days {
		if !seen[d] {
			seen[d] = true
			unique = append(unique, d)
		}
	}
	sort.Slice(unique, func(i, j int) bool { return unique[i] < unique[j] })
	return unique
}
