package main

import (
	"net"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mhbka/distributed-booking/common"
)

func newTestDispatcher(t *testing.T) (*dispatcher, *net.UDPConn) {
	t.Helper()
	serverConn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.ParseIP("127.0.0.1"), Port: 0})
	require.NoError(t, err)
	t.Cleanup(func() { serverConn.Close() })

	transport := newServerTransport(serverConn, false, 0)
	d := newDispatcher(transport, []string{"MR1", "MR2"})
	return d, serverConn
}

func TestHandleAvailabilityUnknownFacilityErrors(t *testing.T) {
	d, _ := newTestDispatcher(t)
	resp := d.handle(common.RawRequest{
		RequestID: uuid.New(),
		Type:      common.AvailabilityRequest{FacilityName: "MR9", Days: []common.Day{common.Monday}},
	}, loopbackAddr(t))
	assert.True(t, resp.IsError)
}

func TestHandleBookThenOffsetThenCancel(t *testing.T) {
	d, _ := newTestDispatcher(t)
	peer := loopbackAddr(t)

	bookResp := d.handle(common.RawRequest{
		RequestID: uuid.New(),
		Type: common.BookRequest{
			FacilityName: "MR1",
			Start:        common.Time{Day: common.Monday, Hour: 9, Minute: 0},
			End:          common.Time{Day: common.Monday, Hour: 10, Minute: 0},
		},
	}, peer)
	require.False(t, bookResp.IsError, bookResp.Message)

	fac := d.facilities["MR1"]
	assert.Equal(t, "1. Mon, 00:00 - 09:00\n2. Mon, 10:00 - 23:59", fac.Availabilities(common.Monday))

	bookingID := parseBookingID(t, bookResp.Message)

	offsetResp := d.handle(common.RawRequest{
		RequestID: uuid.New(),
		Type: common.OffsetBookingRequest{
			BookingID: bookingID,
			Hours:     1,
			Minutes:   0,
			Negative:  false,
		},
	}, peer)
	assert.False(t, offsetResp.IsError, offsetResp.Message)

	cancelResp := d.handle(common.RawRequest{
		RequestID: uuid.New(),
		Type:      common.CancelBookingRequest{BookingID: bookingID},
	}, peer)
	assert.False(t, cancelResp.IsError, cancelResp.Message)
	assert.Equal(t, "1. Mon, 00:00 - 23:59", fac.Availabilities(common.Monday))
}

func TestHandleOffsetUnknownBookingErrors(t *testing.T) {
	d, _ := newTestDispatcher(t)
	resp := d.handle(common.RawRequest{
		RequestID: uuid.New(),
		Type: common.OffsetBookingRequest{
			BookingID: uuid.New(),
			Hours:     1,
		},
	}, loopbackAddr(t))
	assert.True(t, resp.IsError)
}

func TestMonitorSubscriberReceivesNotificationOnBook(t *testing.T) {
	d, _ := newTestDispatcher(t)

	monitorConn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.ParseIP("127.0.0.1"), Port: 0})
	require.NoError(t, err)
	defer monitorConn.Close()
	monitorAddr := monitorConn.LocalAddr().(*net.UDPAddr)

	monitorResp := d.handle(common.RawRequest{
		RequestID: uuid.New(),
		Type:      common.MonitorFacilityRequest{FacilityName: "MR1", Seconds: 30},
	}, monitorAddr)
	require.False(t, monitorResp.IsError)

	_ = d.handle(common.RawRequest{
		RequestID: uuid.New(),
		Type: common.BookRequest{
			FacilityName: "MR1",
			Start:        common.Time{Day: common.Tuesday, Hour: 9, Minute: 0},
			End:          common.Time{Day: common.Tuesday, Hour: 10, Minute: 0},
		},
	}, loopbackAddr(t))

	monitorConn.SetReadDeadline(time.Now().Add(2 * time.Second))
	buf := make([]byte, 65535)
	n, err := monitorConn.Read(buf)
	require.NoError(t, err)

	notification, err := common.DecodeResponse(buf[:n])
	require.NoError(t, err)
	assert.Contains(t, notification.Message, "A booking was updated on Tue")
}

func loopbackAddr(t *testing.T) *net.UDPAddr {
	t.Helper()
	return &net.UDPAddr{IP: net.ParseIP("127.0.0.1"), Port: 40000}
}

// parseBookingID extracts the trailing UUID from a "Book" handler's success
// message, e.g. "Successfully added new booking with ID: <uuid>".
func parseBookingID(t *testing.T, message string) uuid.UUID {
	t.Helper()
	idx := strings.LastIndex(message, ": ")
	require.GreaterOrEqual(t, idx, 0, "message %q missing booking ID", message)
	id, err := uuid.Parse(strings.TrimSpace(message[idx+2:]))
	require.NoError(t, err)
	return id
}
