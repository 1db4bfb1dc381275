package main

import "github.com/google/uuid"

// responseLogCapacity bounds the FIFO response log per spec.md §3/§9: big
// enough to survive a burst of client retries, not meant to provide durable
// idempotence across server restarts.
const responseLogCapacity = 50

// ResponseLog is the server's at-most-once dedup structure: a bounded FIFO
// mapping request_id to the last serialized response bytes sent for it.
// This is the canonical default cache (spec.md §9) selected over the
// per-address DuplicateHistory variant below.
type ResponseLog struct {
	capacity int
	order    []uuid.UUID
	entries  map[uuid.UUID][]byte
}

// NewResponseLog constructs a FIFO response log bounded at capacity entries.
func NewResponseLog(capacity int) *ResponseLog {
	return &ResponseLog{
		capacity: capacity,
		entries:  make(map[uuid.UUID][]byte),
	}
}

// Get returns the cached response bytes for requestID, if any.
func (l *ResponseLog) Get(requestID uuid.UUID) ([]byte, bool) {
	data, ok := l.entries[requestID]
	return data, ok
}

// Insert records response under requestID, evicting the oldest entry if
// the log is at capacity.
func (l *ResponseLog) Insert(requestID uuid.UUID, response []byte) {
	if _, exists := l.entries[requestID]; exists {
		l.entries[requestID] = response
		return
	}
	if len(l.order) >= l.capacity {
		oldest := l.order[0]
		l.order = l.order[1:]
		delete(l.entries, oldest)
	}
	l.order = append(l.order, requestID)
	l.entries[requestID] = response
}

// DuplicateHistory is the per-address "latest-only" cache variant noted in
// spec.md §9 as an inferior alternative: it remembers only the most recent
// exchange per peer, so it forgets responses to earlier request IDs from
// the same address. Kept for comparison in tests; never wired into the
// default server transport.
type DuplicateHistory struct {
	entries map[string]duplicateEntry
}

type duplicateEntry struct {
	requestID uuid.UUID
	response  []byte
}

// NewDuplicateHistory constructs an empty per-address cache.
func NewDuplicateHistory() *DuplicateHistory {
	return &DuplicateHistory{entries: make(map[string]duplicateEntry)}
}

// Get returns the cached response for addr, but only if its request ID
// matches requestID.
func (h *DuplicateHistory) Get(addr string, requestID uuid.UUID) ([]byte, bool) {
	entry, ok := h.entries[addr]
	if !ok || entry.requestID != requestID {
		return nil, false
	}
	return entry.response, true
}

// Insert overwrites addr's cached exchange with (requestID, response).
func (h *DuplicateHistory) Insert(addr string, requestID uuid.UUID, response []byte) {
	h.entries[addr] = duplicateEntry{requestID: requestID, response: response}
}
