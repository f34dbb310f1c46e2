package domain

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"gitlab.com/contesa/contesa/internal/models"
)

const outboxMaxAttempts = 3

// Outbox decouples notification delivery from the moderation path: the engine
// enqueues and returns, a worker goroutine drains into the Notifier with
// bounded retries (at-least-once as long as the queue isn't full).
type Outbox struct {
	notifier Notifier
	logger   zerolog.Logger
	queue    chan queuedNotif
	wg       sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

type queuedNotif struct {
	userID int
	notif  models.Notification
}

func NewOutbox(notifier Notifier, logger zerolog.Logger, size int) *Outbox {
	if size <= 0 {
		size = 256
	}
	return &Outbox{
		notifier: notifier,
		logger:   logger,
		queue:    make(chan queuedNotif, size),
	}
}

func (o *Outbox) Start() {
	o.wg.Add(1)
	go o.run()
}

// Enqueue never blocks the caller. When the queue is full the notification is
// dropped and logged; moderation must not stall on a slow notifier.
func (o *Outbox) Enqueue(userID int, n models.Notification) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		o.logger.Warn().Int("user_id", userID).Msg("outbox closed, notification dropped")
		return
	}
	select {
	case o.queue <- queuedNotif{userID: userID, notif: n}:
	default:
		o.logger.Warn().Int("user_id", userID).Msg("outbox full, notification dropped")
	}
}

// Close stops accepting notifications and waits for the queue to drain.
func (o *Outbox) Close() {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return
	}
	o.closed = true
	close(o.queue)
	o.mu.Unlock()
	o.wg.Wait()
}

func (o *Outbox) run() {
	defer o.wg.Done()
	for qn := range o.queue {
		o.deliver(qn)
	}
}

func (o *Outbox) deliver(qn queuedNotif) {
	var err error
	for attempt := 1; attempt <= outboxMaxAttempts; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err = o.notifier.Notify(ctx, qn.userID, qn.notif)
		cancel()
		if err == nil {
			return
		}
		time.Sleep(time.Duration(attempt) * 50 * time.Millisecond)
	}
	o.logger.Error().
		Err(err).
		Int("user_id", qn.userID).
		Str("notif_type", string(qn.notif.NotifType)).
		Msg("notification delivery failed")
}
