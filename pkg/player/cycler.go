// Package player animates preview frames once over the thumbnail.
package player

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultInterval is the time each frame stays on screen.
const DefaultInterval = 200 * time.Millisecond

// Trigger labels.
const (
	LabelIdle    = "play one cycle"
	LabelPlaying = "playing..."
)

var (
	// ErrAlreadyPlaying is returned when a cycle is started during another.
	ErrAlreadyPlaying = errors.New("player: a cycle is already playing")
	// ErrNoFrames is returned for an empty frame list.
	ErrNoFrames = errors.New("player: no frames to play")
	// ErrNoScreen is returned when a cycler is built without a screen.
	ErrNoScreen = errors.New("player: screen is required")
)

// Screen displays the frames and the trigger control.
type Screen interface {
	ShowFrame(index int, frame string)
	RestoreFrame()
	SetTrigger(enabled bool, label string)
}

// Cycler plays a frame list once and then restores the original frame.
// Only one cycle runs at a time.
type Cycler struct {
	screen   Screen
	interval time.Duration
	logger   *slog.Logger

	playing atomic.Bool
	mu      sync.Mutex
	done    chan struct{}
}

// Option configures a Cycler.
type Option func(*Cycler)

// WithInterval sets the per-frame interval.
func WithInterval(d time.Duration) Option {
	return func(c *Cycler) {
		if d > 0 {
			c.interval = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Cycler) {
		if l != nil {
			c.logger = l
		}
	}
}

// New creates a cycler and enables its trigger.
func New(screen Screen, opts ...Option) (*Cycler, error) {
	if screen == nil {
		return nil, ErrNoScreen
	}
	c := &Cycler{
		screen:   screen,
		interval: DefaultInterval,
		logger:   slog.Default(),
		done:     make(chan struct{}),
	}
	close(c.done)
	for _, opt := range opts {
		opt(c)
	}
	screen.SetTrigger(true, LabelIdle)
	return c, nil
}

// Playing reports whether a cycle is running.
func (c *Cycler) Playing() bool {
	return c.playing.Load()
}

// Done returns a channel closed when the current cycle ends. It is already
// closed when nothing is playing.
func (c *Cycler) Done() <-chan struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.done
}

// Play shows every frame once and blocks until the cycle ends or ctx is
// cancelled. The original frame is restored in both cases.
func (c *Cycler) Play(ctx context.Context, frames []string) error {
	done, err := c.begin(frames)
	if err != nil {
		return err
	}
	return c.run(ctx, frames, done)
}

// Start runs Play in the background.
func (c *Cycler) Start(ctx context.Context, frames []string) error {
	done, err := c.begin(frames)
	if err != nil {
		return err
	}
	go func() {
		if err := c.run(ctx, frames, done); err != nil {
			c.logger.Debug("cycle interrupted", "error", err)
		}
	}()
	return nil
}

func (c *Cycler) begin(frames []string) (chan struct{}, error) {
	if len(frames) == 0 {
		return nil, ErrNoFrames
	}
	if !c.playing.CompareAndSwap(false, true) {
		return nil, ErrAlreadyPlaying
	}

	done := make(chan struct{})
	c.mu.Lock()
	c.done = done
	c.mu.Unlock()

	c.screen.SetTrigger(false, LabelPlaying)
	return done, nil
}

func (c *Cycler) run(ctx context.Context, frames []string, done chan struct{}) error {
	defer func() {
		c.screen.RestoreFrame()
		c.screen.SetTrigger(true, LabelIdle)
		c.playing.Store(false)
		close(done)
	}()

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for i, f := range frames {
		c.screen.ShowFrame(i, f)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
	c.logger.Debug("cycle finished", "frames", len(frames))
	return nil
}
