package main

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMonitorRegistryMatchesOnlySubscribedFacility(t *testing.T) {
	reg := newMonitorRegistry()
	now := time.Now()
	addr1 := &net.UDPAddr{IP: net.ParseIP("127.0.0.1"), Port: 9001}
	addr2 := &net.UDPAddr{IP: net.ParseIP("127.0.0.1"), Port: 9002}

	reg.register(addr1, "MR1", 30, now)
	reg.register(addr2, "MR2", 30, now)

	matches := reg.matching("MR1", now)
	assert.Equal(t, []*net.UDPAddr{addr1}, matches)
}

func TestMonitorRegistryEvictsExpiredSubscriptions(t *testing.T) {
	reg := newMonitorRegistry()
	now := time.Now()
	addr := &net.UDPAddr{IP: net.ParseIP("127.0.0.1"), Port: 9001}

	reg.register(addr, "MR1", 1, now)

	past := now.Add(2 * time.Second)
	matches := reg.matching("MR1", past)
	assert.Empty(t, matches)
	assert.Empty(t, reg.subs, "expired subscription should have been evicted from storage")
}

func TestMonitorRegistrySupportsMultipleSubscribersToSameFacility(t *testing.T) {
	reg := newMonitorRegistry()
	now := time.Now()
	addr1 := &net.UDPAddr{IP: net.ParseIP("127.0.0.1"), Port: 9001}
	addr2 := &net.UDPAddr{IP: net.ParseIP("127.0.0.1"), Port: 9002}

	reg.register(addr1, "MR1", 30, now)
	reg.register(addr2, "MR1", 30, now)

	matches := reg.matching("MR1", now)
	assert.ElementsMatch(t, []*net.UDPAddr{addr1, addr2}, matches)
}
