package main

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResponseLogReturnsCachedEntry(t *testing.T) {
	log := NewResponseLog(2)
	id := uuid.New()
	log.Insert(id, []byte("hello"))

	got, ok := log.Get(id)
	require.True(t, ok)
	assert.Equal(t, []byte("hello"), got)
}

func TestResponseLogMissReportsFalse(t *testing.T) {
	log := NewResponseLog(2)
	_, ok := log.Get(uuid.New())
	assert.False(t, ok)
}

func TestResponseLogEvictsOldestAtCapacity(t *testing.T) {
	log := NewResponseLog(2)
	first := uuid.New()
	second := uuid.New()
	third := uuid.New()

	log.Insert(first, []byte("1"))
	log.Insert(second, []byte("2"))
	log.Insert(third, []byte("3"))

	_, ok := log.Get(first)
	assert.False(t, ok, "oldest entry should have been evicted")

	gotSecond, ok := log.Get(second)
	require.True(t, ok)
	assert.Equal(t, []byte("2"), gotSecond)

	gotThird, ok := log.Get(third)
	require.True(t, ok)
	assert.Equal(t, []byte("3"), gotThird)
}

func TestResponseLogReinsertOverwritesWithoutEvicting(t *testing.T) {
	log := NewResponseLog(2)
	first := uuid.New()
	second := uuid.New()

	log.Insert(first, []byte("1"))
	log.Insert(second, []byte("2"))
	log.Insert(first, []byte("1-updated"))

	got, ok := log.Get(first)
	require.True(t, ok)
	assert.Equal(t, []byte("1-updated"), got)

	_, ok = log.Get(second)
	assert.True(t, ok, "reinserting an existing key should not evict another entry")
}

func TestDuplicateHistoryOnlyRemembersLatestExchange(t *testing.T) {
	history := NewDuplicateHistory()
	addr := "127.0.0.1:9000"
	first := uuid.New()
	second := uuid.New()

	history.Insert(addr, first, []byte("1"))
	history.Insert(addr, second, []byte("2"))

	_, ok := history.Get(addr, first)
	assert.False(t, ok, "latest-only cache should forget the earlier request ID")

	got, ok := history.Get(addr, second)
	require.True(t, ok)
	assert.Equal(t, []byte("2"), got)
}
