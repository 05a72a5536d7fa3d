package capture

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mgoltzsche/voicechat/internal/metrics"
	"github.com/mgoltzsche/voicechat/internal/model"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported recording format")
	ErrAlreadyRecording  = errors.New("already recording")
	ErrNotRecording      = errors.New("not recording")
)

// Microphone grants access to an audio input device.
type Microphone interface {
	// Supports reports whether recordings can be encoded using the given MIME type.
	Supports(mimeType string) bool
	// Open starts recording. It fails when the device cannot be accessed.
	Open(ctx context.Context, mimeType string) (Stream, error)
}

// Stream emits encoded chunks of an active recording.
type Stream interface {
	// ReadChunk blocks until the next chunk is available.
	// It returns io.EOF after Close once all chunks have been read.
	ReadChunk() ([]byte, error)
	Close() error
}

type Sender interface {
	Send(ctx context.Context, b []byte) error
}

// Recorder toggles between idle and recording.
// Stopping a recording assembles its chunks into one recording and sends it.
type Recorder struct {
	Microphone Microphone
	MimeType   string
	Controls   model.Controls
	Sender     Sender
	Metrics    *metrics.Metrics

	mutex   sync.Mutex
	session *session
}

type session struct {
	id      string
	stream  Stream
	started time.Time
	chunks  [][]byte
	err     error
	done    chan struct{}
}

// Recording reports whether a recording session is active.
func (r *Recorder) Recording() bool {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	return r.session != nil
}

// Toggle starts a recording when idle and stops and sends it otherwise.
func (r *Recorder) Toggle(ctx context.Context) error {
	if r.Recording() {
		_, err := r.Stop(ctx)
		return err
	}

	return r.Start(ctx)
}

// Start requests microphone access and starts accumulating encoded chunks.
// On failure the error is shown and the capture control is re-enabled so that the user can retry.
func (r *Recorder) Start(ctx context.Context) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if r.session != nil {
		return ErrAlreadyRecording
	}

	if !r.Microphone.Supports(r.MimeType) {
		return r.fail(fmt.Errorf("%w: %s is not supported by the audio input", ErrUnsupportedFormat, r.MimeType))
	}

	stream, err := r.Microphone.Open(ctx, r.MimeType)
	if err != nil {
		return r.fail(fmt.Errorf("access microphone: %w", err))
	}

	s := &session{
		id:      uuid.NewString(),
		stream:  stream,
		started: time.Now(),
		done:    make(chan struct{}),
	}
	r.session = s

	go s.collect()

	slog.Debug(fmt.Sprintf("recording %s started", s.id))

	r.Controls.SetStatus(model.StatusRecording)

	return nil
}

func (r *Recorder) fail(err error) error {
	slog.Error(err.Error())
	r.Metrics.CaptureErrors.Inc()
	r.Controls.SetStatus("Error: " + err.Error())
	r.Controls.SetCaptureEnabled(true)

	return err
}

// Stop ends the active recording session, assembles its chunks in capture order
// and hands the result to the sender.
func (r *Recorder) Stop(ctx context.Context) (model.Recording, error) {
	r.mutex.Lock()
	s := r.session
	r.session = nil
	r.mutex.Unlock()

	if s == nil {
		return model.Recording{}, ErrNotRecording
	}

	r.Controls.SetCaptureEnabled(false)
	r.Controls.SetStatus(model.StatusProcessing)

	if err := s.stream.Close(); err != nil {
		slog.Warn(fmt.Sprintf("close recording stream: %s", err))
	}

	<-s.done

	if s.err != nil {
		slog.Warn(fmt.Sprintf("recording %s ended early: %s", s.id, s.err))
	}

	rec := model.Recording{
		ID:       s.id,
		MimeType: r.MimeType,
		Data:     bytes.Join(s.chunks, nil),
	}
	duration := time.Since(s.started)

	r.Metrics.RecordingSeconds.Observe(duration.Seconds())
	slog.Debug(fmt.Sprintf("recording %s stopped after %s: %d chunks, %d bytes", s.id, duration.Round(time.Millisecond), len(s.chunks), len(rec.Data)))

	err := r.Sender.Send(ctx, rec.Data)
	if err != nil {
		return rec, fmt.Errorf("send recording %s: %w", s.id, err)
	}

	return rec, nil
}

// Discard ends the active recording session without sending it.
func (r *Recorder) Discard() {
	r.mutex.Lock()
	s := r.session
	r.session = nil
	r.mutex.Unlock()

	if s == nil {
		return
	}

	if err := s.stream.Close(); err != nil {
		slog.Warn(fmt.Sprintf("close recording stream: %s", err))
	}

	<-s.done

	slog.Debug(fmt.Sprintf("recording %s discarded", s.id))
}

func (s *session) collect() {
	defer close(s.done)

	for {
		b, err := s.stream.ReadChunk()
		if err != nil {
			if !errors.Is(err, io.EOF) {
				s.err = err
			}
			return
		}

		if len(b) > 0 {
			s.chunks = append(s.chunks, b)
		}
	}
}
