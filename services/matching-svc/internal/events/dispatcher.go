package events

import (
	"context"
	"fmt"
	"hash/fnv"
	"sync"
	"time"

	"bloodlink/pkg/logger"
)

// Config настройки диспетчера
type Config struct {
	Workers        int
	BufferSize     int
	HandlerTimeout time.Duration
	// OnPublish вызывается для каждого принятого в очередь события
	OnPublish func(Event)
	// OnDrop вызывается, когда очередь переполнена и событие отброшено
	OnDrop func(Event)
	// OnHandlerError вызывается при ошибке или панике обработчика
	OnHandlerError func(handler string, evt Event, err error)
}

type subscription struct {
	name    string
	handler Handler
}

// Dispatcher асинхронно доставляет события подписчикам.
//
// Каждый воркер владеет своей очередью; события одного запроса всегда
// попадают в одну очередь, поэтому порядок для запроса сохраняется.
// Publish никогда не блокирует: при переполнении событие отбрасывается.
type Dispatcher struct {
	cfg    Config
	queues []chan Event
	subs   []subscription

	mu      sync.RWMutex
	started bool
	closed  bool
	wg      sync.WaitGroup
}

// NewDispatcher создаёт диспетчер. Подписчиков добавляют до Start.
func NewDispatcher(cfg Config) *Dispatcher {
	if cfg.Workers <= 0 {
		cfg.Workers = 2
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 256
	}
	if cfg.HandlerTimeout <= 0 {
		cfg.HandlerTimeout = 5 * time.Second
	}

	queues := make([]chan Event, cfg.Workers)
	for i := range queues {
		queues[i] = make(chan Event, cfg.BufferSize)
	}
	return &Dispatcher{cfg: cfg, queues: queues}
}

// Subscribe регистрирует обработчик
func (d *Dispatcher) Subscribe(name string, h Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.started {
		panic("events: Subscribe after Start")
	}
	d.subs = append(d.subs, subscription{name: name, handler: h})
}

// Start запускает воркеры
func (d *Dispatcher) Start() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.started || d.closed {
		return
	}
	d.started = true

	for _, q := range d.queues {
		d.wg.Add(1)
		go d.processLoop(q)
	}
}

// Publish ставит событие в очередь. Возвращает false, если событие отброшено.
func (d *Dispatcher) Publish(evt Event) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		d.drop(evt, "dispatcher closed")
		return false
	}

	select {
	case d.queues[d.shard(evt.Key())] <- evt:
		if d.cfg.OnPublish != nil {
			d.cfg.OnPublish(evt)
		}
		return true
	default:
		d.drop(evt, "queue full")
		return false
	}
}

// Close перестаёт принимать события и дожидается обработки очереди
// либо отмены ctx.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	for _, q := range d.queues {
		close(q)
	}
	started := d.started
	d.mu.Unlock()

	if !started {
		return nil
	}

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("events: drain interrupted: %w", ctx.Err())
	}
}

func (d *Dispatcher) shard(key string) int {
	if len(d.queues) == 1 {
		return 0
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return int(h.Sum32() % uint32(len(d.queues)))
}

func (d *Dispatcher) processLoop(queue <-chan Event) {
	defer d.wg.Done()

	for evt := range queue {
		for _, sub := range d.subs {
			d.deliver(sub, evt)
		}
	}
}

func (d *Dispatcher) deliver(sub subscription, evt Event) {
	ctx, cancel := context.WithTimeout(context.Background(), d.cfg.HandlerTimeout)
	defer cancel()

	err := func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("panic: %v", r)
			}
		}()
		return sub.handler.Handle(ctx, evt)
	}()
	if err == nil {
		return
	}

	logger.Log.Warn("Event handler failed",
		"handler", sub.name,
		"event", string(evt.Type),
		"request_id", evt.Key(),
		"error", err,
	)
	if d.cfg.OnHandlerError != nil {
		d.cfg.OnHandlerError(sub.name, evt, err)
	}
}

func (d *Dispatcher) drop(evt Event, reason string) {
	logger.Log.Warn("Event dropped",
		"event", string(evt.Type),
		"request_id", evt.Key(),
		"reason", reason,
	)
	if d.cfg.OnDrop != nil {
		d.cfg.OnDrop(evt)
	}
}
