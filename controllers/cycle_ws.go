package controller

import (
	"log"
	"sync"

	"github.com/gofiber/websocket/v2"

	"outreachsim/engine"
)

// CycleHub fans each cycle result out to connected websocket clients.
// It implements the worker's ResultSink.
type CycleHub struct {
	mu     sync.Mutex
	subs   map[*websocket.Conn]chan engine.Result
	logger *log.Logger
}

func NewCycleHub(logger *log.Logger) *CycleHub {
	return &CycleHub{
		subs:   make(map[*websocket.Conn]chan engine.Result),
		logger: logger,
	}
}

// Publish delivers a result to every subscriber without blocking the
// worker: slow clients just miss updates.
func (h *CycleHub) Publish(result engine.Result) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, ch := range h.subs {
		select {
		case ch <- result:
		default:
		}
	}
}

func (h *CycleHub) subscribe(c *websocket.Conn) chan engine.Result {
	ch := make(chan engine.Result, 8)
	h.mu.Lock()
	h.subs[c] = ch
	h.mu.Unlock()
	return ch
}

func (h *CycleHub) unsubscribe(c *websocket.Conn) {
	h.mu.Lock()
	delete(h.subs, c)
	h.mu.Unlock()
}

type cycleProgress struct {
	Outcome  string `json:"outcome"`
	Senders  int    `json:"senders"`
	Sends    int    `json:"sends"`
	Events   int    `json:"events"`
	Failures int    `json:"failures"`
	Duration string `json:"duration"`
}

// HandleCycleProgressWS streams per-cycle results to a websocket
// client until it disconnects.
func (h *CycleHub) HandleCycleProgressWS(c *websocket.Conn) {
	defer c.Close()

	ch := h.subscribe(c)
	defer h.unsubscribe(c)

	// Drain reads so close frames are noticed.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := c.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-done:
			return
		case result := <-ch:
			progress := cycleProgress{
				Outcome:  result.Outcome,
				Senders:  result.Senders,
				Sends:    result.Sends,
				Events:   result.Events,
				Failures: result.Failures,
				Duration: result.Duration.String(),
			}
			if err := c.WriteJSON(progress); err != nil {
				h.logger.Printf("writing cycle progress: %v", err)
				return
			}
		}
	}
}
