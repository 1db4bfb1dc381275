package main

import (
	"math/rand/v2"
	"net"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/mhbka/distributed-booking/common"
)

const (
	// maxRetries bounds the client's resend budget per spec.md §4.4.
	maxRetries = 10
	// requestTimeout is how long the client waits for a reply before
	// resending a request.
	requestTimeout = 500 * time.Millisecond
	// monitorPollInterval bounds each read while listening for pushed
	// notifications, so the monitor loop can notice its window has expired.
	monitorPollInterval = time.Second
	recvBufferSize      = 65535
)

// clientTransport owns the client's UDP socket and implements request/reply
// with bounded retries, plus the duplicate-send fault hook used to exercise
// at-most-once vs at-least-once invocation semantics (spec.md §4.4).
type clientTransport struct {
	conn           *net.UDPConn
	useReliability bool
	duplicateRate  float64
}

func newClientTransport(conn *net.UDPConn, useReliability bool, duplicateRate float64) *clientTransport {
	return &clientTransport{conn: conn, useReliability: useReliability, duplicateRate: duplicateRate}
}

// send transmits req and blocks for a matching reply. With reliability off,
// it transmits exactly once and waits for exactly one datagram with a
// single timeout, per spec.md §4.4 — no retries. With reliability on, it
// retries up to maxRetries times with TIMEOUT_MS·(k+1) backoff between
// timed-out attempts, and on each attempt may skip its own receive step
// (simulating a duplicate send) per the configured duplicateRate.
func (t *clientTransport) send(req common.RawRequest) (common.RawResponse, error) {
	data, err := common.EncodeRequest(req)
	if err != nil {
		return common.RawResponse{}, err
	}

	if !t.useReliability {
		if _, err := t.conn.Write(data); err != nil {
			return common.RawResponse{}, common.NewTransportError("send", err)
		}
		return t.receiveOne(req.RequestID, requestTimeout, 0)
	}

	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			log.Debug().Int("attempt", attempt).Str("request_id", req.RequestID.String()).Msg("retrying request")
		}

		if _, err := t.conn.Write(data); err != nil {
			return common.RawResponse{}, common.NewTransportError("send", err)
		}

		if rand.Float64() < t.duplicateRate {
			log.Debug().Str("request_id", req.RequestID.String()).Msg("skipping receive step (simulated duplicate send)")
			continue
		}

		resp, timedOut, err := t.receiveUntilMatchOrTimeout(req.RequestID, requestTimeout)
		if err != nil {
			return common.RawResponse{}, err
		}
		if !timedOut {
			return resp, nil
		}

		if attempt < maxRetries-1 {
			time.Sleep(time.Duration(attempt+1) * requestTimeout)
		}
	}

	return common.RawResponse{}, &common.TimeoutError{Retries: maxRetries}
}

// receiveOne waits for a single datagram within timeout and decodes it as a
// RawResponse, used by the reliability-off path which never retries.
func (t *clientTransport) receiveOne(requestID uuid.UUID, timeout time.Duration, retries int) (common.RawResponse, error) {
	buf := make([]byte, recvBufferSize)
	t.conn.SetReadDeadline(time.Now().Add(timeout))
	n, err := t.conn.Read(buf)
	if err != nil {
		if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
			return common.RawResponse{}, &common.TimeoutError{Retries: retries}
		}
		return common.RawResponse{}, common.NewTransportError("receive", err)
	}
	return common.DecodeResponse(buf[:n])
}

// receiveUntilMatchOrTimeout reads datagrams until one decodes with a
// matching RequestID or the deadline elapses. Mismatched or malformed
// datagrams are discarded without consuming the timeout budget early.
// A non-timeout read error aborts immediately.
func (t *clientTransport) receiveUntilMatchOrTimeout(requestID uuid.UUID, timeout time.Duration) (resp common.RawResponse, timedOut bool, err error) {
	buf := make([]byte, recvBufferSize)
	deadline := time.Now().Add(timeout)
	t.conn.SetReadDeadline(deadline)

	for {
		n, readErr := t.conn.Read(buf)
		if readErr != nil {
			if netErr, ok := readErr.(net.Error); ok && netErr.Timeout() {
				return common.RawResponse{}, true, nil
			}
			return common.RawResponse{}, false, common.NewTransportError("receive", readErr)
		}

		decoded, decodeErr := common.DecodeResponse(buf[:n])
		if decodeErr != nil {
			log.Warn().Err(decodeErr).Msg("discarding malformed reply")
			continue
		}
		if decoded.RequestID != requestID {
			log.Debug().Str("request_id", decoded.RequestID.String()).Msg("discarding stale reply")
			continue
		}
		return decoded, false, nil
	}
}

// listenForNotifications reads pushed monitor responses for duration,
// invoking handle for each one received. It returns once duration elapses.
func (t *clientTransport) listenForNotifications(duration time.Duration, handle func(common.RawResponse)) {
	deadline := time.Now().Add(duration)
	buf := make([]byte, recvBufferSize)

	for time.Now().Before(deadline) {
		readUntil := time.Now().Add(monitorPollInterval)
		if readUntil.After(deadline) {
			readUntil = deadline
		}
		t.conn.SetReadDeadline(readUntil)

		n, err := t.conn.Read(buf)
		if err != nil {
			if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
				continue
			}
			log.Warn().Err(err).Msg("monitor read failed")
			return
		}

		resp, err := common.DecodeResponse(buf[:n])
		if err != nil {
			log.Warn().Err(err).Msg("discarding malformed notification")
			continue
		}
		handle(resp)
	}
}
