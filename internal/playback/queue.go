package playback

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/mgoltzsche/voicechat/internal/metrics"
)

// Clip is a decoded, playable audio clip.
type Clip interface {
	Duration() time.Duration
}

// Decoder decodes an encoded audio buffer into a playable clip.
type Decoder interface {
	Decode(ctx context.Context, data []byte) (Clip, error)
}

// Player plays a clip and returns once playback completed.
type Player interface {
	Play(ctx context.Context, clip Clip) error
}

// Queue plays encoded audio buffers strictly one at a time in arrival order.
type Queue struct {
	ctx     context.Context
	decoder Decoder
	player  Player
	metrics *metrics.Metrics
	mutex   sync.Mutex
	clips   [][]byte
	playing bool
	idle    *sync.Cond
}

func New(ctx context.Context, decoder Decoder, player Player, m *metrics.Metrics) *Queue {
	q := &Queue{
		ctx:     ctx,
		decoder: decoder,
		player:  player,
		metrics: m,
	}
	q.idle = sync.NewCond(&q.mutex)

	return q
}

// Enqueue appends an encoded buffer to the tail of the queue and starts
// the drain loop unless it is already running.
// It never interrupts a clip that is currently playing.
func (q *Queue) Enqueue(b []byte) {
	q.mutex.Lock()
	defer q.mutex.Unlock()

	q.clips = append(q.clips, b)
	q.metrics.ClipsEnqueued.Inc()
	q.metrics.QueueLength.Set(float64(len(q.clips)))

	if q.playing {
		return
	}

	q.playing = true

	go q.drain()
}

// Playing reports whether the drain loop is running.
func (q *Queue) Playing() bool {
	q.mutex.Lock()
	defer q.mutex.Unlock()

	return q.playing
}

// Len returns the number of clips waiting for playback.
func (q *Queue) Len() int {
	q.mutex.Lock()
	defer q.mutex.Unlock()

	return len(q.clips)
}

// WaitIdle blocks until all enqueued clips have been played.
func (q *Queue) WaitIdle() {
	q.mutex.Lock()
	defer q.mutex.Unlock()

	for q.playing {
		q.idle.Wait()
	}
}

func (q *Queue) drain() {
	for {
		b, ok := q.next()
		if !ok {
			return
		}

		err := q.play(b)
		if err != nil {
			// Skip the clip and continue with the next one.
			q.metrics.DecodeFailures.Inc()
			slog.Error(fmt.Sprintf("play audio clip: %s", err))
			continue
		}

		q.metrics.ClipsPlayed.Inc()
	}
}

// next pops the head of the queue or, when the queue is empty, transitions to idle.
func (q *Queue) next() ([]byte, bool) {
	q.mutex.Lock()
	defer q.mutex.Unlock()

	if len(q.clips) == 0 {
		q.playing = false
		q.idle.Broadcast()
		return nil, false
	}

	b := q.clips[0]
	q.clips[0] = nil
	q.clips = q.clips[1:]
	q.metrics.QueueLength.Set(float64(len(q.clips)))

	return b, true
}

func (q *Queue) play(b []byte) error {
	clip, err := q.decoder.Decode(q.ctx, b)
	if err != nil {
		return fmt.Errorf("decode: %w", err)
	}

	start := time.Now()

	err = q.player.Play(q.ctx, clip)
	if err != nil {
		return fmt.Errorf("play: %w", err)
	}

	q.metrics.PlaybackSeconds.Observe(time.Since(start).Seconds())

	return nil
}
