package websocket

import (
	"log"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/google/uuid"
)

const (
	EventSessionStarted   = "session_started"
	EventSessionSubmitted = "session_submitted"
)

// ExamEvent is broadcast to every connected monitor when a student starts or
// submits an exam session.
type ExamEvent struct {
	Type      string    `json:"type"`
	SessionID uuid.UUID `json:"session_id"`
	SubjectID uuid.UUID `json:"subject_id"`
	Subject   string    `json:"subject"`
	StudentID uuid.UUID `json:"student_id"`
	Score     *float64  `json:"score,omitempty"`
	At        time.Time `json:"at"`
}

// MonitorConn is the write side of a monitor connection.
type MonitorConn interface {
	WriteJSON(v interface{}) error
	Close() error
}

var _ MonitorConn = (*websocket.Conn)(nil)

type Client struct {
	UserID uuid.UUID
	Conn   MonitorConn
}

var monitors = make(map[MonitorConn]uuid.UUID)

var Register = make(chan *Client)
var Unregister = make(chan *Client)
var Events = make(chan ExamEvent, 64)

func init() {
	go RunHub()
}

// RunHub owns the monitor map and is the only goroutine that writes to
// connections; the websocket library does not support concurrent writes on
// one connection. Dead connections are closed and dropped on write failure.
func RunHub() {
	for {
		select {
		case client := <-Register:
			log.Printf("Exam monitor connected: %s", client.UserID)
			monitors[client.Conn] = client.UserID
		case client := <-Unregister:
			log.Printf("Exam monitor disconnected: %s", client.UserID)
			delete(monitors, client.Conn)
		case event := <-Events:
			for conn, userID := range monitors {
				if err := conn.WriteJSON(event); err != nil {
					log.Printf("Error sending exam event to monitor %s: %v", userID, err)
					conn.Close()
					delete(monitors, conn)
				}
			}
		}
	}
}

func RegisterMonitor(client *Client) {
	Register <- client
}

func UnregisterMonitor(client *Client) {
	Unregister <- client
}

// PublishExamEvent hands the event to the hub goroutine. Publishing never
// blocks a request: with no monitors the hub drains the event as a no-op,
// and when the buffer is full the event is dropped.
func PublishExamEvent(event ExamEvent) {
	select {
	case Events <- event:
	default:
		log.Printf("⚠️ Exam event buffer full, dropping %s event for session %s", event.Type, event.SessionID)
	}
}
