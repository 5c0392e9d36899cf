// deferred_test.go - Tests for the deferred log queue
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package hestia

import (
	"fmt"
	"testing"
)

// collectSink records every delivered message, optionally failing after a
// set number of writes.
type collectSink struct {
	msgs    []Message
	failAt  int // fail on the nth write (1-based), 0 means never
	written int
}

func (s *collectSink) Write(msg Message) error {
	s.written++
	if s.failAt > 0 && s.written >= s.failAt {
		return fmt.Errorf("sink full")
	}
	s.msgs = append(s.msgs, msg)
	return nil
}

func TestDeferredLogOrder(t *testing.T) {
	log := NewDeferredLog()
	log.Log(LevelInfo, "first")
	log.Logf(LevelError, "second %d", 2)
	log.Log(LevelDebug, "third")

	msgs := log.Messages()
	if len(msgs) != 3 {
		t.Fatalf("Len = %d, want 3", len(msgs))
	}
	if msgs[0].Text != "first" || msgs[1].Text != "second 2" || msgs[2].Text != "third" {
		t.Errorf("Messages out of order: %v", msgs)
	}
	if msgs[1].Level != LevelError {
		t.Errorf("Level = %v, want LevelError", msgs[1].Level)
	}
	if msgs[0].Time.IsZero() {
		t.Error("Message time not set")
	}
}

func TestDeferredLogFlushDrains(t *testing.T) {
	log := NewDeferredLog()
	log.Log(LevelInfo, "a")
	log.Log(LevelWarning, "b")

	sink := &collectSink{}
	if err := log.Flush(sink); err != nil {
		t.Fatalf("Flush failed: %v", err)
	}
	if len(sink.msgs) != 2 {
		t.Errorf("Delivered %d messages, want 2", len(sink.msgs))
	}
	if log.Len() != 0 {
		t.Errorf("Queue not cleared: %d left", log.Len())
	}

	// flushing an empty queue is a no-op
	if err := log.Flush(sink); err != nil {
		t.Errorf("Empty flush failed: %v", err)
	}
}

func TestDeferredLogFlushFailureKeepsRemainder(t *testing.T) {
	log := NewDeferredLog()
	log.Log(LevelInfo, "a")
	log.Log(LevelInfo, "b")
	log.Log(LevelInfo, "c")

	sink := &collectSink{failAt: 2}
	if err := log.Flush(sink); err == nil {
		t.Fatal("Expected flush error")
	}

	// "a" was delivered; "b" and "c" stay queued for the next flush
	if len(sink.msgs) != 1 || sink.msgs[0].Text != "a" {
		t.Errorf("Delivered = %v", sink.msgs)
	}
	remaining := log.Messages()
	if len(remaining) != 2 || remaining[0].Text != "b" {
		t.Errorf("Remaining = %v", remaining)
	}

	// a healthy sink can drain the rest
	good := &collectSink{}
	if err := log.Flush(good); err != nil {
		t.Fatalf("Retry flush failed: %v", err)
	}
	if len(good.msgs) != 2 || log.Len() != 0 {
		t.Errorf("Retry delivered %v, queue len %d", good.msgs, log.Len())
	}
}

func TestDeferredLogFlushNilSink(t *testing.T) {
	log := NewDeferredLog()
	log.Log(LevelInfo, "a")

	if err := log.Flush(nil); err == nil {
		t.Error("Expected error for nil sink")
	}
	if log.Len() != 1 {
		t.Error("Queue modified by failed flush")
	}
}

func TestDeferredLogClear(t *testing.T) {
	log := NewDeferredLog()
	log.Log(LevelInfo, "a")
	log.Clear()
	if log.Len() != 0 {
		t.Error("Clear left messages queued")
	}
}

func TestDeferredLogSince(t *testing.T) {
	log := NewDeferredLog()
	log.Log(LevelInfo, "before")
	mark := log.Len()
	log.Log(LevelError, "after")

	tail := log.since(mark)
	if len(tail) != 1 || tail[0].Text != "after" {
		t.Errorf("since(%d) = %v", mark, tail)
	}
	if got := log.since(99); got != nil {
		t.Errorf("since out of range = %v, want nil", got)
	}
}

func TestMessagesReturnsCopy(t *testing.T) {
	log := NewDeferredLog()
	log.Log(LevelInfo, "original")

	msgs := log.Messages()
	msgs[0].Text = "tampered"
	if log.Messages()[0].Text != "original" {
		t.Error("Messages() exposed internal storage")
	}
}

func TestConfigLogPassthrough(t *testing.T) {
	h := newTestHelper(t)
	cfg := h.newEngine("")

	cfg.Log(LevelWarning, "host message")
	if !hasMessage(cfg, LevelWarning, "host message") {
		t.Error("Host message not queued")
	}

	sink := &collectSink{}
	if err := cfg.FlushLog(sink); err != nil {
		t.Fatalf("FlushLog failed: %v", err)
	}
	if len(sink.msgs) != 1 || len(cfg.Messages()) != 0 {
		t.Error("FlushLog did not drain the queue")
	}
}
