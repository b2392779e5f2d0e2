// Package agent is the exam-machine side of the wire contract: it batches
// keystrokes and pushes clipboard, window, and drag events to the gateway's
// /log endpoint. It captures nothing itself; the caller feeds it observations.
package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/Divyam-11/ExamJudge/internal/domain"
)

const (
	// DefaultFlushInterval is how often buffered keystrokes are sent.
	DefaultFlushInterval = 10 * time.Second
	// requestTimeout bounds a single POST so a stalled gateway cannot wedge
	// the capture loop.
	requestTimeout = 5 * time.Second
)

// Client posts telemetry records for one student session.
type Client struct {
	serverURL string
	roomID    string
	student   domain.Identity
	httpc     *http.Client
}

// NewClient returns a client that reports for the given student in the given
// room. serverURL is the gateway's /log endpoint.
func NewClient(serverURL, roomID string, student domain.Identity) *Client {
	return &Client{
		serverURL: serverURL,
		roomID:    roomID,
		student:   student,
		httpc:     &http.Client{Timeout: requestTimeout},
	}
}

// payload mirrors the gateway's telemetry request body.
type payload struct {
	RoomID    string          `json:"room_id"`
	EventType string          `json:"event_type"`
	Student   domain.Identity `json:"student"`

	Keystrokes        string `json:"keystrokes,omitempty"`
	PastedContent     string `json:"pasted_content,omitempty"`
	Title             string `json:"title,omitempty"`
	SourceWindow      string `json:"source_window,omitempty"`
	DestinationWindow string `json:"destination_window,omitempty"`
}

func (c *Client) post(ctx context.Context, p payload) error {
	p.RoomID = c.roomID
	p.Student = c.student
	body, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.serverURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("post %s: %w", p.EventType, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)
	if resp.StatusCode != http.StatusAccepted {
		return fmt.Errorf("post %s: gateway returned %d", p.EventType, resp.StatusCode)
	}
	return nil
}

// ReportPaste sends one clipboard capture immediately.
func (c *Client) ReportPaste(ctx context.Context, content string) error {
	return c.post(ctx, payload{EventType: string(domain.KindPaste), PastedContent: content})
}

// ReportWindowTitle sends one foreground-window title immediately, original case.
func (c *Client) ReportWindowTitle(ctx context.Context, title string) error {
	return c.post(ctx, payload{EventType: string(domain.KindWindowTitle), Title: title})
}

// ReportDragDrop sends one drag and drop observation immediately.
func (c *Client) ReportDragDrop(ctx context.Context, source, destination string) error {
	return c.post(ctx, payload{
		EventType:         string(domain.KindDragDrop),
		SourceWindow:      source,
		DestinationWindow: destination,
	})
}

// Monitor batches keystrokes and flushes them on an interval. Immediate events
// go straight through the client.
type Monitor struct {
	client        *Client
	flushInterval time.Duration

	mu     sync.Mutex
	buffer bytes.Buffer
}

// NewMonitor wraps the client with a keystroke buffer. flushInterval <= 0
// falls back to DefaultFlushInterval.
func NewMonitor(client *Client, flushInterval time.Duration) *Monitor {
	if flushInterval <= 0 {
		flushInterval = DefaultFlushInterval
	}
	return &Monitor{client: client, flushInterval: flushInterval}
}

// RecordKeys appends captured keystrokes to the buffer. Never blocks on the network.
func (m *Monitor) RecordKeys(keys string) {
	m.mu.Lock()
	m.buffer.WriteString(keys)
	m.mu.Unlock()
}

// Flush sends the buffered keystrokes if there are any. On failure the buffer
// is kept so the keystrokes ride along with the next flush.
func (m *Monitor) Flush(ctx context.Context) error {
	m.mu.Lock()
	pending := m.buffer.String()
	m.mu.Unlock()
	if pending == "" {
		return nil
	}
	if err := m.client.post(ctx, payload{
		EventType:  string(domain.KindKeystroke),
		Keystrokes: pending,
	}); err != nil {
		return err
	}
	m.mu.Lock()
	// Only discard what was sent; keys recorded during the POST stay buffered.
	remaining := m.buffer.String()[len(pending):]
	m.buffer.Reset()
	m.buffer.WriteString(remaining)
	m.mu.Unlock()
	return nil
}

// Run flushes the keystroke buffer every flushInterval until ctx is done,
// then performs one final flush. Flush errors are logged, not fatal; the
// buffer survives them.
func (m *Monitor) Run(ctx context.Context) {
	ticker := time.NewTicker(m.flushInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if err := m.Flush(ctx); err != nil {
				log.Printf("agent: flush: %v", err)
			}
		case <-ctx.Done():
			flushCtx, cancel := context.WithTimeout(context.Background(), requestTimeout)
			if err := m.Flush(flushCtx); err != nil {
				log.Printf("agent: final flush: %v", err)
			}
			cancel()
			return
		}
	}
}
