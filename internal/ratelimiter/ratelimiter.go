// Package ratelimiter serializes outgoing Telegram calls and spaces them per chat
// to stay under the Bot API flood limits.
package ratelimiter

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

const (
	privateChatRate = time.Second
	groupChatRate   = 3 * time.Second
	queueSize       = 1000
)

var ErrStopped = errors.New("rate limiter stopped")

// SendFunc performs one Bot API call.
type SendFunc func(ctx context.Context) error

type request struct {
	ctx      context.Context
	chatID   int64
	send     SendFunc
	response chan error
}

type RateLimiter struct {
	queue       chan request
	lastSent    map[int64]time.Time
	mu          sync.Mutex
	privateRate time.Duration
	groupRate   time.Duration
	ctx         context.Context
	cancel      context.CancelFunc
	done        chan struct{}
	log         *slog.Logger
}

func New(log *slog.Logger) *RateLimiter {
	return newRateLimiter(log, privateChatRate, groupChatRate)
}

// NewWithRates is New with custom minimal gaps between two calls to one chat.
func NewWithRates(log *slog.Logger, privateRate, groupRate time.Duration) *RateLimiter {
	return newRateLimiter(log, privateRate, groupRate)
}

func newRateLimiter(log *slog.Logger, privateRate, groupRate time.Duration) *RateLimiter {
	ctx, cancel := context.WithCancel(context.Background())

	rl := &RateLimiter{
		queue:       make(chan request, queueSize),
		lastSent:    make(map[int64]time.Time),
		privateRate: privateRate,
		groupRate:   groupRate,
		ctx:         ctx,
		cancel:      cancel,
		done:        make(chan struct{}),
		log:         log,
	}

	go rl.processQueue()

	return rl
}

// Send queues send for chatID and waits for its result.
func (rl *RateLimiter) Send(ctx context.Context, chatID int64, send SendFunc) error {
	req := request{
		ctx:      ctx,
		chatID:   chatID,
		send:     send,
		response: make(chan error, 1),
	}

	if rl.ctx.Err() != nil {
		return ErrStopped
	}

	select {
	case rl.queue <- req:
	case <-rl.ctx.Done():
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-req.response:
		return err
	case <-rl.done:
		select {
		case err := <-req.response:
			return err
		default:
			return ErrStopped
		}
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stop fails queued requests and waits for the worker to exit.
func (rl *RateLimiter) Stop() {
	rl.cancel()
	<-rl.done
}

func (rl *RateLimiter) processQueue() {
	defer close(rl.done)

	for {
		select {
		case req := <-rl.queue:
			rl.handleRequest(req)
		case <-rl.ctx.Done():
			for {
				select {
				case req := <-rl.queue:
					req.response <- ErrStopped
				default:
					return
				}
			}
		}
	}
}

func (rl *RateLimiter) handleRequest(req request) {
	if err := req.ctx.Err(); err != nil {
		req.response <- err

		return
	}

	rl.mu.Lock()
	lastSent, exists := rl.lastSent[req.chatID]
	rl.mu.Unlock()

	if exists {
		delay := rl.delay(req.chatID, lastSent)

		if delay > 0 {
			rl.log.DebugContext(req.ctx, "Rate limiting message",
				"chatID", req.chatID,
				"delay", delay,
				"queueLen", len(rl.queue))

			select {
			case <-time.After(delay):
			case <-rl.ctx.Done():
				req.response <- ErrStopped

				return
			case <-req.ctx.Done():
				req.response <- req.ctx.Err()

				return
			}
		}
	}

	err := req.send(req.ctx)

	rl.mu.Lock()
	rl.lastSent[req.chatID] = time.Now()
	rl.mu.Unlock()

	req.response <- err
}

func (rl *RateLimiter) delay(chatID int64, lastSent time.Time) time.Duration {
	rate := rl.privateRate
	if chatID < 0 {
		rate = rl.groupRate
	}

	return max(rate-time.Since(lastSent), 0)
}
