package main

import (
	"net"
	"time"
)

// subscription is a client's registration to receive push updates about a
// facility for a bounded wall-clock window.
type subscription struct {
	addr         *net.UDPAddr
	facilityName string
	expiresAt    time.Time
}

// monitorRegistry owns the server's monitor subscriptions. Expiry eviction
// is O(N) per state change; this is intentional given N bounded in
// practice by a handful of clients (spec.md §4.6).
type monitorRegistry struct {
	subs []subscription
}

func newMonitorRegistry() *monitorRegistry {
	return &monitorRegistry{}
}

// register adds a subscription expiring `seconds` from now.
func (m *monitorRegistry) register(addr *net.UDPAddr, facilityName string, seconds uint8, now time.Time) {
	m.subs = append(m.subs, subscription{
		addr:         addr,
		facilityName: facilityName,
		expiresAt:    now.Add(time.Duration(seconds) * time.Second),
	})
}

// evictExpired retains only subscriptions whose expiry is still in the future.
func (m *monitorRegistry) evictExpired(now time.Time) {
	live := m.subs[:0]
	for _, s := range m.subs {
		if now.Before(s.expiresAt) {
			live = append(live, s)
		}
	}
	m.subs = live
}

// matching returns the addresses subscribed to facilityName, after first
// evicting expired entries.
func (m *monitorRegistry) matching(facilityName string, now time.Time) []*net.UDPAddr {
	m.evictExpired(now)
	var addrs []*net.UDPAddr
	for _, s := range m.subs {
		if s.facilityName == facilityName {
			addrs = append(addrs, s.addr)
		}
	}
	return addrs
}
