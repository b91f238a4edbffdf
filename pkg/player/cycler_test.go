package player

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeScreen struct {
	mu       sync.Mutex
	shown    []string
	restored int
	enabled  bool
	label    string
	labels   []string
}

func (f *fakeScreen) ShowFrame(_ int, frame string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.shown = append(f.shown, frame)
}

func (f *fakeScreen) RestoreFrame() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.restored++
}

func (f *fakeScreen) SetTrigger(enabled bool, label string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.enabled, f.label = enabled, label
	f.labels = append(f.labels, label)
}

func (f *fakeScreen) snapshot() ([]string, int, bool, string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.shown...), f.restored, f.enabled, f.label
}

func TestNew_RequiresScreen(t *testing.T) {
	_, err := New(nil)
	assert.ErrorIs(t, err, ErrNoScreen)
}

func TestPlay_ShowsEveryFrameOnce(t *testing.T) {
	screen := &fakeScreen{}
	c, err := New(screen, WithInterval(time.Millisecond))
	require.NoError(t, err)

	require.NoError(t, c.Play(context.Background(), []string{"a", "b", "c"}))

	shown, restored, enabled, label := screen.snapshot()
	assert.Equal(t, []string{"a", "b", "c"}, shown)
	assert.Equal(t, 1, restored)
	assert.True(t, enabled)
	assert.Equal(t, LabelIdle, label)
	assert.Equal(t, []string{LabelIdle, LabelPlaying, LabelIdle}, screen.labels)
	assert.False(t, c.Playing())
}

func TestStart_RejectsReentry(t *testing.T) {
	screen := &fakeScreen{}
	c, err := New(screen, WithInterval(20*time.Millisecond))
	require.NoError(t, err)

	require.NoError(t, c.Start(context.Background(), []string{"a", "b"}))
	assert.True(t, c.Playing())
	_, _, enabled, label := screen.snapshot()
	assert.False(t, enabled)
	assert.Equal(t, LabelPlaying, label)

	assert.ErrorIs(t, c.Play(context.Background(), []string{"x"}), ErrAlreadyPlaying)

	select {
	case <-c.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("cycle did not finish")
	}
	shown, restored, enabled, _ := screen.snapshot()
	assert.Equal(t, []string{"a", "b"}, shown)
	assert.Equal(t, 1, restored)
	assert.True(t, enabled)
}

func TestPlay_CancelRestores(t *testing.T) {
	screen := &fakeScreen{}
	c, err := New(screen, WithInterval(time.Hour))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, c.Play(ctx, []string{"a", "b"}), context.Canceled)

	shown, restored, enabled, _ := screen.snapshot()
	assert.Equal(t, []string{"a"}, shown)
	assert.Equal(t, 1, restored)
	assert.True(t, enabled)
}

func TestPlay_NoFrames(t *testing.T) {
	c, err := New(&fakeScreen{})
	require.NoError(t, err)
	assert.ErrorIs(t, c.Play(context.Background(), nil), ErrNoFrames)

	select {
	case <-c.Done():
	default:
		t.Fatal("Done should be closed when idle")
	}
}
