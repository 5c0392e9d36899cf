// deferred.go: Deferred log queue
//
// Reload and validation happen before the host has a real logging subsystem,
// so every message is queued as a (severity, text) pair and drained into a
// Sink once one is attached.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package hestia

import (
	"fmt"
	"time"

	"github.com/agilira/go-errors"
	"github.com/agilira/go-timecache"
)

// Message is a single deferred log entry.
type Message struct {
	Time  time.Time
	Level Level
	Text  string
}

// Sink receives drained log messages. Implementations decide formatting,
// filtering and persistence; see WriterSink and SQLiteSink.
type Sink interface {
	Write(msg Message) error
}

// DeferredLog accumulates messages in order until an explicit flush.
// It is not safe for concurrent use; the engine assumes a single caller.
type DeferredLog struct {
	msgs []Message
}

// NewDeferredLog creates an empty deferred log queue.
func NewDeferredLog() *DeferredLog {
	return &DeferredLog{}
}

// Log appends a message to the queue.
func (l *DeferredLog) Log(level Level, text string) {
	l.msgs = append(l.msgs, Message{
		Time:  timecache.CachedTime(),
		Level: level,
		Text:  text,
	})
}

// Logf appends a formatted message to the queue.
func (l *DeferredLog) Logf(level Level, format string, args ...interface{}) {
	l.Log(level, fmt.Sprintf(format, args...))
}

// Len returns the number of queued messages.
func (l *DeferredLog) Len() int {
	return len(l.msgs)
}

// Messages returns a copy of the queued messages without draining them.
func (l *DeferredLog) Messages() []Message {
	out := make([]Message, len(l.msgs))
	copy(out, l.msgs)
	return out
}

// since returns the messages appended after the given queue mark.
func (l *DeferredLog) since(mark int) []Message {
	if mark < 0 || mark > len(l.msgs) {
		return nil
	}
	return l.msgs[mark:]
}

// Flush drains the queue into sink in order and clears it. If the sink
// fails, already-delivered messages are dropped and the remainder stays
// queued for a later flush.
func (l *DeferredLog) Flush(sink Sink) error {
	if sink == nil {
		return errors.New(ErrCodeSinkError, "flush sink cannot be nil")
	}
	for i, msg := range l.msgs {
		if err := sink.Write(msg); err != nil {
			l.msgs = l.msgs[i:]
			return errors.Wrap(err, ErrCodeSinkError, "log sink write failed")
		}
	}
	l.msgs = l.msgs[:0]
	return nil
}

// Clear discards all queued messages.
func (l *DeferredLog) Clear() {
	l.msgs = l.msgs[:0]
}
