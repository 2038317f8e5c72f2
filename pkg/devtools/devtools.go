// Package devtools provides an HTTP inspector for reactor graphs: a Sink
// that keeps a bounded history of engine events, serves it as JSON, and
// streams live events to WebSocket clients.
//
//	inspector := devtools.NewInspector()
//	s := reactor.NewScheduler(reactor.WithSink(inspector))
//	http.ListenAndServe(":6060", inspector.Handler())
//
// Intended for development; the event payloads carry computation names and
// error strings.
package devtools

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/reactor-go/reactor/pkg/reactor"
)

// EventKind identifies the engine event carried by an Event.
type EventKind string

const (
	KindFlushStarted   EventKind = "flush_started"
	KindFlushFinished  EventKind = "flush_finished"
	KindComputationRan EventKind = "computation_ran"
	KindReconciled     EventKind = "dependencies_reconciled"
	KindDisposalFailed EventKind = "disposal_failed"
)

// Event is one engine event in wire form. Fields beyond Seq, Time and Kind
// are populated per kind.
type Event struct {
	Seq  uint64    `json:"seq"`
	Time time.Time `json:"time"`
	Kind EventKind `json:"kind"`

	Computation string `json:"computation,omitempty"`
	Owner       string `json:"owner,omitempty"`
	Error       string `json:"error,omitempty"`

	Passes   int   `json:"passes,omitempty"`
	Runs     int   `json:"runs,omitempty"`
	Errors   int   `json:"errors,omitempty"`
	Aborted  bool  `json:"aborted,omitempty"`
	Duration int64 `json:"duration_us,omitempty"`

	Static       int `json:"static,omitempty"`
	Dynamic      int `json:"dynamic,omitempty"`
	Resubscribed int `json:"resubscribed,omitempty"`
	Dropped      int `json:"dropped,omitempty"`
}

// Snapshot is the response shape of GET /snapshot.
type Snapshot struct {
	Flushes          uint64  `json:"flushes"`
	Runs             uint64  `json:"runs"`
	RunErrors        uint64  `json:"run_errors"`
	DisposalFailures uint64  `json:"disposal_failures"`
	Clients          int     `json:"clients"`
	Events           []Event `json:"events"`
}

// Option configures an Inspector.
type Option func(*Inspector)

// WithBufferSize sets how many events the inspector retains (default 256).
func WithBufferSize(n int) Option {
	return func(i *Inspector) {
		if n > 0 {
			i.bufSize = n
		}
	}
}

// WithLogger sets the logger for connection errors. A nil logger falls back
// to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(i *Inspector) {
		if logger != nil {
			i.logger = logger
		}
	}
}

var _ reactor.Sink = (*Inspector)(nil)

// Inspector implements reactor.Sink, retaining a bounded event history and
// broadcasting live events to WebSocket clients.
//
// Unlike the engine itself, the inspector is safe for concurrent use: sink
// callbacks arrive on the engine's thread while HTTP requests arrive on the
// server's.
type Inspector struct {
	logger  *slog.Logger
	bufSize int

	mu     sync.RWMutex
	events []Event
	seq    uint64

	flushes          uint64
	runs             uint64
	runErrors        uint64
	disposalFailures uint64

	clients  map[*websocket.Conn]bool
	upgrader websocket.Upgrader
}

// NewInspector creates an inspector with an empty history.
func NewInspector(opts ...Option) *Inspector {
	i := &Inspector{
		logger:  slog.Default(),
		bufSize: 256,
		clients: make(map[*websocket.Conn]bool),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true // inspector is a dev tool
			},
		},
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Handler returns the inspector's HTTP surface:
//
//	GET /healthz  - liveness probe
//	GET /snapshot - counters plus retained event history as JSON
//	GET /events   - WebSocket stream of live events
func (i *Inspector) Handler() http.Handler {
	r := chi.NewRouter()
	r.Get("/healthz", i.handleHealthz)
	r.Get("/snapshot", i.handleSnapshot)
	r.Get("/events", i.handleEvents)
	return r
}

// FlushStarted implements reactor.Sink.
func (i *Inspector) FlushStarted() {
	i.record(Event{Kind: KindFlushStarted})
}

// FlushFinished implements reactor.Sink.
func (i *Inspector) FlushFinished(stats reactor.FlushStats) {
	i.mu.Lock()
	i.flushes++
	i.mu.Unlock()
	i.record(Event{
		Kind:     KindFlushFinished,
		Passes:   stats.Passes,
		Runs:     stats.Runs,
		Errors:   stats.Errors,
		Aborted:  stats.Aborted,
		Duration: stats.Duration.Microseconds(),
	})
}

// ComputationRan implements reactor.Sink.
func (i *Inspector) ComputationRan(stats reactor.RunStats) {
	e := Event{
		Kind:        KindComputationRan,
		Computation: stats.Computation,
		Duration:    stats.Duration.Microseconds(),
	}
	if stats.Err != nil {
		e.Error = stats.Err.Error()
	}
	i.mu.Lock()
	i.runs++
	if stats.Err != nil {
		i.runErrors++
	}
	i.mu.Unlock()
	i.record(e)
}

// DependenciesReconciled implements reactor.Sink.
func (i *Inspector) DependenciesReconciled(stats reactor.TrackerStats) {
	i.record(Event{
		Kind:         KindReconciled,
		Computation:  stats.Computation,
		Static:       stats.Static,
		Dynamic:      stats.Dynamic,
		Resubscribed: stats.Resubscribed,
		Dropped:      stats.Dropped,
	})
}

// DisposalFailed implements reactor.Sink.
func (i *Inspector) DisposalFailed(owner string, recovered any) {
	i.mu.Lock()
	i.disposalFailures++
	i.mu.Unlock()
	i.record(Event{
		Kind:  KindDisposalFailed,
		Owner: owner,
		Error: fmt.Sprintf("%v", recovered),
	})
}

// record stamps the event, appends it to the bounded history and broadcasts
// it to connected clients.
func (i *Inspector) record(e Event) {
	i.mu.Lock()
	i.seq++
	e.Seq = i.seq
	e.Time = time.Now()
	i.events = append(i.events, e)
	if len(i.events) > i.bufSize {
		i.events = i.events[len(i.events)-i.bufSize:]
	}
	i.mu.Unlock()

	i.broadcast(e)
}

// broadcast sends the event to all connected clients, dropping clients
// whose writes fail.
func (i *Inspector) broadcast(e Event) {
	data, err := json.Marshal(e)
	if err != nil {
		return
	}

	i.mu.RLock()
	clients := make([]*websocket.Conn, 0, len(i.clients))
	for client := range i.clients {
		clients = append(clients, client)
	}
	i.mu.RUnlock()

	for _, client := range clients {
		if err := client.WriteMessage(websocket.TextMessage, data); err != nil {
			i.mu.Lock()
			delete(i.clients, client)
			i.mu.Unlock()
			client.Close()
		}
	}
}

func (i *Inspector) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func (i *Inspector) handleSnapshot(w http.ResponseWriter, _ *http.Request) {
	i.mu.RLock()
	snap := Snapshot{
		Flushes:          i.flushes,
		Runs:             i.runs,
		RunErrors:        i.runErrors,
		DisposalFailures: i.disposalFailures,
		Clients:          len(i.clients),
		Events:           append([]Event(nil), i.events...),
	}
	i.mu.RUnlock()

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(snap); err != nil {
		i.logger.Error("snapshot encode error", "error", err)
	}
}

func (i *Inspector) handleEvents(w http.ResponseWriter, r *http.Request) {
	conn, err := i.upgrader.Upgrade(w, r, nil)
	if err != nil {
		i.logger.Error("websocket upgrade error", "error", err)
		return
	}

	i.mu.Lock()
	i.clients[conn] = true
	i.mu.Unlock()

	// Keep the connection registered until the client disconnects
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	i.mu.Lock()
	delete(i.clients, conn)
	i.mu.Unlock()
	conn.Close()
}

// ClientCount returns the number of connected WebSocket clients.
func (i *Inspector) ClientCount() int {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return len(i.clients)
}

// Close disconnects all WebSocket clients.
func (i *Inspector) Close() {
	i.mu.Lock()
	defer i.mu.Unlock()
	for client := range i.clients {
		client.Close()
		delete(i.clients, client)
	}
}
