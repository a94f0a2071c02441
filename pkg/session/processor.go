package session

import (
	"hash/fnv"
	"sync"

	"github.com/decred/slog"

	"github.com/maugame/mau/pkg/mau"
)

// Handler consumes journal events off the processor's worker pool.
type Handler interface {
	HandleEvent(mau.Event)
}

// HandlerFunc adapts a plain function to a Handler.
type HandlerFunc func(mau.Event)

// HandleEvent calls the function.
func (f HandlerFunc) HandleEvent(e mau.Event) { f(e) }

// Processor is a mau.Sink that fans journal events out to registered handlers
// on a worker pool. Events are sharded onto workers by game id, so events of
// one room are handled in publish order while rooms proceed in parallel.
type Processor struct {
	log      slog.Logger
	workers  []*eventWorker
	stopChan chan struct{}
	wg       sync.WaitGroup
	started  bool
	mu       sync.Mutex

	handlersMu sync.RWMutex
	handlers   []Handler
}

// eventWorker drains one shard of the event stream.
type eventWorker struct {
	id        int
	processor *Processor
	queue     chan mau.Event
}

// NewProcessor creates a processor with the given per-worker queue size and
// worker count.
func NewProcessor(log slog.Logger, queueSize, workerCount int) *Processor {
	if log == nil {
		log = slog.Disabled
	}
	if queueSize <= 0 {
		queueSize = 128
	}
	if workerCount <= 0 {
		workerCount = 1
	}
	p := &Processor{
		log:      log,
		stopChan: make(chan struct{}),
	}
	p.workers = make([]*eventWorker, workerCount)
	for i := 0; i < workerCount; i++ {
		p.workers[i] = &eventWorker{
			id:        i,
			processor: p,
			queue:     make(chan mau.Event, queueSize),
		}
	}
	return p
}

// Register adds a handler. Handlers registered after Start still receive
// events published after registration.
func (p *Processor) Register(h Handler) {
	p.handlersMu.Lock()
	defer p.handlersMu.Unlock()
	p.handlers = append(p.handlers, h)
}

// Start begins draining the worker queues.
func (p *Processor) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started {
		return
	}
	p.started = true
	p.log.Infof("Starting event processor with %d workers", len(p.workers))
	for _, w := range p.workers {
		p.wg.Add(1)
		go w.run()
	}
}

// Stop drains nothing further and waits for the workers to finish their
// queued events.
func (p *Processor) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.started {
		return
	}
	p.log.Infof("Stopping event processor...")
	close(p.stopChan)
	p.wg.Wait()
	p.started = false
	p.stopChan = make(chan struct{})
	p.log.Infof("Event processor stopped")
}

// Publish routes an event to its room's worker shard. Never blocks a game
// command: a full shard drops the event with an error log.
func (p *Processor) Publish(event mau.Event) {
	p.mu.Lock()
	started := p.started
	p.mu.Unlock()
	if !started {
		p.log.Warnf("Event processor not started, dropping event: %s", event.Kind)
		return
	}

	w := p.workers[shardFor(event.GameID, len(p.workers))]
	select {
	case w.queue <- event:
		p.log.Debugf("Published event: %s for game %s", event.Kind, event.GameID)
	default:
		p.log.Errorf("Event queue full, dropping event: %s for game %s", event.Kind, event.GameID)
	}
}

// shardFor maps a game id to a stable worker index.
func shardFor(gameID string, n int) int {
	h := fnv.New32a()
	h.Write([]byte(gameID))
	return int(h.Sum32() % uint32(n))
}

// run executes the worker loop.
func (w *eventWorker) run() {
	defer w.processor.wg.Done()
	w.processor.log.Debugf("Event worker %d started", w.id)
	for {
		select {
		case <-w.processor.stopChan:
			// Drain what is already queued before exiting.
			for {
				select {
				case event := <-w.queue:
					w.processEvent(event)
				default:
					w.processor.log.Debugf("Event worker %d stopping", w.id)
					return
				}
			}
		case event := <-w.queue:
			w.processEvent(event)
		}
	}
}

// processEvent runs a single event through every registered handler.
func (w *eventWorker) processEvent(event mau.Event) {
	w.processor.log.Debugf("Worker %d processing event: %s for game %s",
		w.id, event.Kind, event.GameID)
	w.processor.handlersMu.RLock()
	handlers := make([]Handler, len(w.processor.handlers))
	copy(handlers, w.processor.handlers)
	w.processor.handlersMu.RUnlock()
	for _, h := range handlers {
		h.HandleEvent(event)
	}
}
