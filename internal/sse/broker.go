// Package sse pushes content change notifications to open views over
// Server-Sent Events.
package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"
)

// ContentUpdated is broadcast after every change so listing views can
// refetch without caring what changed.
const ContentUpdated = "content.updated"

// Event is one SSE frame.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// Filter selects the event types a client receives. A nil Filter accepts
// everything.
type Filter func(eventType string) bool

// OnlyContentUpdated is the filter for anonymous listing views.
func OnlyContentUpdated(eventType string) bool { return eventType == ContentUpdated }

type client struct {
	ch     chan []byte
	filter Filter
}

type subscribeReq struct {
	ch     chan []byte
	filter Filter
}

// Broker fans events out to connected clients.
//
// A single event loop goroutine owns the client set; public methods talk to
// it over channels.
type Broker struct {
	subscribeCh   chan subscribeReq
	unsubscribeCh chan chan []byte
	publishCh     chan []Event
	countReqCh    chan chan int

	stopCh  chan struct{}
	stopped chan struct{}
	closed  atomic.Bool
}

func NewBroker() *Broker {
	b := &Broker{
		subscribeCh:   make(chan subscribeReq),
		unsubscribeCh: make(chan chan []byte),
		publishCh:     make(chan []Event, 256),
		countReqCh:    make(chan chan int),
		stopCh:        make(chan struct{}),
		stopped:       make(chan struct{}),
	}

	go b.run()
	return b
}

func (b *Broker) run() {
	defer close(b.stopped)

	clients := make(map[chan []byte]client)

	broadcast := func(event Event) {
		payload, err := json.Marshal(event.Data)
		if err != nil {
			return
		}
		raw := []byte(fmt.Sprintf("event: %s\ndata: %s\n\n", event.Type, payload))

		for ch, c := range clients {
			if c.filter != nil && !c.filter(event.Type) {
				continue
			}
			select {
			case ch <- raw:
			default:
				// Slow client; drop rather than stall the loop.
			}
		}
	}

	for {
		select {
		case <-b.stopCh:
			for ch := range clients {
				close(ch)
			}
			return

		case req := <-b.subscribeCh:
			clients[req.ch] = client{ch: req.ch, filter: req.filter}

		case ch := <-b.unsubscribeCh:
			if _, ok := clients[ch]; ok {
				delete(clients, ch)
				close(ch)
			}

		case events := <-b.publishCh:
			for _, e := range events {
				broadcast(e)
			}

		case resp := <-b.countReqCh:
			resp <- len(clients)
		}
	}
}

// Close stops the loop and closes every client channel. It is safe to call
// more than once.
func (b *Broker) Close() {
	if b.closed.CompareAndSwap(false, true) {
		close(b.stopCh)
	}
	<-b.stopped
}

// Subscribe adds a client that receives the events accepted by filter.
func (b *Broker) Subscribe(filter Filter) chan []byte {
	ch := make(chan []byte, 64)
	if b.closed.Load() {
		close(ch)
		return ch
	}

	select {
	case b.subscribeCh <- subscribeReq{ch: ch, filter: filter}:
	case <-b.stopped:
		close(ch)
	}

	return ch
}

// Unsubscribe removes a client and closes its channel.
func (b *Broker) Unsubscribe(ch chan []byte) {
	if b.closed.Load() {
		return
	}
	select {
	case b.unsubscribeCh <- ch:
	case <-b.stopped:
	}
}

// ClientCount returns the number of connected clients.
func (b *Broker) ClientCount() int {
	if b.closed.Load() {
		return 0
	}

	resp := make(chan int, 1)
	select {
	case b.countReqCh <- resp:
	case <-b.stopped:
		return 0
	}

	select {
	case n := <-resp:
		return n
	case <-b.stopped:
		return 0
	}
}

// Publish broadcasts events in order. Events published in one call reach
// every client back to back.
func (b *Broker) Publish(events ...Event) {
	if b.closed.Load() || len(events) == 0 {
		return
	}
	select {
	case b.publishCh <- events:
	case <-b.stopped:
	}
}

// PublishChange announces an article change as article.<kind>, followed by
// content.updated. An empty id (out-of-band change) sends only the latter.
func (b *Broker) PublishChange(kind, id string) {
	if id == "" {
		b.Publish(Event{Type: ContentUpdated, Data: map[string]string{}})
		return
	}
	b.Publish(
		Event{Type: "article." + kind, Data: map[string]string{"id": id}},
		Event{Type: ContentUpdated, Data: map[string]string{}},
	)
}

// Handler streams the events accepted by filter.
func (b *Broker) Handler(filter Filter) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.stream(w, r, filter)
	})
}

// ServeHTTP streams every event.
func (b *Broker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.stream(w, r, nil)
}

func (b *Broker) stream(w http.ResponseWriter, r *http.Request, filter Filter) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ch := b.Subscribe(filter)
	defer b.Unsubscribe(ch)

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			_, _ = w.Write(msg)
			flusher.Flush()
		}
	}
}
