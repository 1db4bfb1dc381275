package main

import (
	"net"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mhbka/distributed-booking/common"
)

// echoServer replies to every datagram it receives with a successful
// RawResponse carrying the same RequestID, optionally dropping a configured
// number of requests per RequestID before replying (to exercise retry).
func startEchoServer(t *testing.T, dropFirstN int) *net.UDPAddr {
	t.Helper()
	conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.ParseIP("127.0.0.1"), Port: 0})
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	seen := make(map[uuid.UUID]int)
	go func() {
		buf := make([]byte, 65535)
		for {
			n, peer, err := conn.ReadFromUDP(buf)
			if err != nil {
				return
			}
			req, err := common.DecodeRequest(buf[:n])
			if err != nil {
				continue
			}
			seen[req.RequestID]++
			if seen[req.RequestID] <= dropFirstN {
				continue
			}
			resp, err := common.EncodeResponse(common.RawResponse{RequestID: req.RequestID, IsError: false, Message: "ok"})
			if err != nil {
				continue
			}
			conn.WriteToUDP(resp, peer)
		}
	}()
	return conn.LocalAddr().(*net.UDPAddr)
}

func dialEchoServer(t *testing.T, serverAddr *net.UDPAddr) *net.UDPConn {
	t.Helper()
	conn, err := net.DialUDP("udp", nil, serverAddr)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestClientTransportReceivesImmediateReply(t *testing.T) {
	serverAddr := startEchoServer(t, 0)
	conn := dialEchoServer(t, serverAddr)
	transport := newClientTransport(conn, false, 0)

	resp, err := transport.send(common.RawRequest{
		RequestID: uuid.New(),
		Type:      common.CancelBookingRequest{BookingID: uuid.New()},
	})
	require.NoError(t, err)
	assert.False(t, resp.IsError)
	assert.Equal(t, "ok", resp.Message)
}

func TestClientTransportRetriesPastDroppedRepliesWhenReliabilityOn(t *testing.T) {
	serverAddr := startEchoServer(t, 2)
	conn := dialEchoServer(t, serverAddr)
	transport := newClientTransport(conn, true, 0)

	resp, err := transport.send(common.RawRequest{
		RequestID: uuid.New(),
		Type:      common.CancelBookingRequest{BookingID: uuid.New()},
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Message)
}

// TestClientTransportReliabilityOffDoesNotRetry confirms spec.md §4.4's
// requirement that with reliability off, send transmits exactly once and
// fails after a single timeout rather than resending.
func TestClientTransportReliabilityOffDoesNotRetry(t *testing.T) {
	serverAddr := startEchoServer(t, 1) // drops the one and only request
	conn := dialEchoServer(t, serverAddr)
	transport := newClientTransport(conn, false, 0)

	_, err := transport.send(common.RawRequest{
		RequestID: uuid.New(),
		Type:      common.CancelBookingRequest{BookingID: uuid.New()},
	})
	require.Error(t, err)
	var timeoutErr *common.TimeoutError
	require.ErrorAs(t, err, &timeoutErr)
	assert.Equal(t, 0, timeoutErr.Retries)
}

func TestClientTransportTimesOutWhenServerNeverReplies(t *testing.T) {
	conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.ParseIP("127.0.0.1"), Port: 0})
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	// The socket stays open but nothing ever reads from it or replies.
	silentServer := conn.LocalAddr().(*net.UDPAddr)

	clientConn := dialEchoServer(t, silentServer)
	transport := newClientTransport(clientConn, false, 0)

	_, err = transport.send(common.RawRequest{
		RequestID: uuid.New(),
		Type:      common.CancelBookingRequest{BookingID: uuid.New()},
	})
	require.Error(t, err)
	var timeoutErr *common.TimeoutError
	assert.ErrorAs(t, err, &timeoutErr)
}

// TestClientTransportReliabilityOnExhaustsRetriesOnTotalLoss confirms the
// reliability-on path retries the full budget, unlike the reliability-off
// path above, before giving up.
func TestClientTransportReliabilityOnExhaustsRetriesOnTotalLoss(t *testing.T) {
	conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.ParseIP("127.0.0.1"), Port: 0})
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	silentServer := conn.LocalAddr().(*net.UDPAddr)

	clientConn := dialEchoServer(t, silentServer)
	transport := newClientTransport(clientConn, true, 0)

	_, err = transport.send(common.RawRequest{
		RequestID: uuid.New(),
		Type:      common.CancelBookingRequest{BookingID: uuid.New()},
	})
	require.Error(t, err)
	var timeoutErr *common.TimeoutError
	require.ErrorAs(t, err, &timeoutErr)
	assert.Equal(t, maxRetries, timeoutErr.Retries)
}
