package websocket

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
)

type fakeConn struct {
	writing    atomic.Bool
	overlapped atomic.Bool
	closed     atomic.Bool
	failWrites bool
	received   chan ExamEvent
}

func newFakeConn(failWrites bool) *fakeConn {
	return &fakeConn{failWrites: failWrites, received: make(chan ExamEvent, 64)}
}

func (c *fakeConn) WriteJSON(v interface{}) error {
	if !c.writing.CompareAndSwap(false, true) {
		c.overlapped.Store(true)
	}
	time.Sleep(time.Millisecond)
	c.writing.Store(false)

	if c.failWrites {
		return errors.New("connection reset")
	}
	c.received <- v.(ExamEvent)
	return nil
}

func (c *fakeConn) Close() error {
	c.closed.Store(true)
	return nil
}

func waitForEvent(t *testing.T, conn *fakeConn) ExamEvent {
	t.Helper()
	select {
	case event := <-conn.received:
		return event
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for an exam event")
		return ExamEvent{}
	}
}

func TestPublishSerializesWritesPerConnection(t *testing.T) {
	conn := newFakeConn(false)
	client := &Client{UserID: uuid.New(), Conn: conn}
	RegisterMonitor(client)
	defer UnregisterMonitor(client)

	const publishers = 8
	var wg sync.WaitGroup
	for i := 0; i < publishers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			PublishExamEvent(ExamEvent{
				Type:      EventSessionStarted,
				SessionID: uuid.New(),
				At:        time.Now(),
			})
		}()
	}
	wg.Wait()

	for i := 0; i < publishers; i++ {
		waitForEvent(t, conn)
	}
	if conn.overlapped.Load() {
		t.Fatal("two writes entered the same connection concurrently")
	}
}

func TestPublishDropsDeadConnection(t *testing.T) {
	dead := newFakeConn(true)
	live := newFakeConn(false)
	RegisterMonitor(&Client{UserID: uuid.New(), Conn: dead})
	liveClient := &Client{UserID: uuid.New(), Conn: live}
	RegisterMonitor(liveClient)
	defer UnregisterMonitor(liveClient)

	PublishExamEvent(ExamEvent{Type: EventSessionStarted, SessionID: uuid.New()})
	waitForEvent(t, live)

	// events are processed in order, so by the time the live connection
	// sees the second event the dead one has been removed
	PublishExamEvent(ExamEvent{Type: EventSessionSubmitted, SessionID: uuid.New()})
	waitForEvent(t, live)

	if !dead.closed.Load() {
		t.Fatal("failing connection was not closed")
	}
	if len(dead.received) != 0 {
		t.Fatal("failing connection should never have received an event")
	}
}

func TestPublishWithNoMonitorsDoesNotBlock(t *testing.T) {
	done := make(chan struct{})
	go func() {
		for i := 0; i < 200; i++ {
			PublishExamEvent(ExamEvent{Type: EventSessionStarted, SessionID: uuid.New()})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publishing with no monitors must not block")
	}
}
