package audio

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/gordonklaus/portaudio"

	"github.com/mgoltzsche/voicechat/internal/capture"
	"github.com/mgoltzsche/voicechat/internal/wavfile"
)

var _ capture.Microphone = &Microphone{}

// Microphone records 16 bit PCM wave audio from a portaudio input device.
type Microphone struct {
	Device     string
	SampleRate int
	Channels   int
}

func (m *Microphone) Supports(mimeType string) bool {
	return mimeType == wavfile.MimeType
}

// Open opens the audio input device and starts recording.
// The first chunk of the returned stream is a wave header, subsequent chunks are PCM data.
func (m *Microphone) Open(ctx context.Context, mimeType string) (capture.Stream, error) {
	if !m.Supports(mimeType) {
		return nil, fmt.Errorf("%w: %s", capture.ErrUnsupportedFormat, mimeType)
	}

	device, err := inputDevice(m.Device)
	if err != nil {
		return nil, err
	}

	header, err := wavfile.StreamingHeader(m.SampleRate, m.Channels)
	if err != nil {
		return nil, fmt.Errorf("generate wav header: %w", err)
	}

	in := make([]int16, 512*9*m.Channels) // Use int16 to capture 16-bit samples.
	audioStream, err := portaudio.OpenStream(portaudio.StreamParameters{
		Input: portaudio.StreamDeviceParameters{
			Device:   device,
			Channels: m.Channels,
			Latency:  device.DefaultLowInputLatency,
		},
		SampleRate:      device.DefaultSampleRate,
		FramesPerBuffer: len(in) / m.Channels,
	}, &in)
	if err != nil {
		return nil, fmt.Errorf("opening audio input stream: %w", err)
	}

	err = audioStream.Start()
	if err != nil {
		audioStream.Close()
		return nil, fmt.Errorf("starting audio input stream: %w", err)
	}

	s := &inputStream{
		chunks: make(chan []byte, 50),
		stop:   make(chan struct{}),
	}
	s.chunks <- header

	go func() {
		defer close(s.chunks)

		var maxVolume float64

		defer func() {
			if err := audioStream.Stop(); err != nil {
				slog.Warn("failed to stop input audio stream", "err", err)
			}
			if err := audioStream.Close(); err != nil {
				slog.Warn("failed to close input audio stream", "err", err)
			}
			slog.Debug(fmt.Sprintf("recording stopped, max volume: %d", int(maxVolume)))
		}()

		for {
			select {
			case <-ctx.Done():
				return
			case <-s.stop:
				return
			default:
			}

			if err := audioStream.Read(); err != nil {
				if err == portaudio.InputOverflowed {
					slog.Warn("audio input overflowed - dropped samples")
				} else {
					slog.Warn("failed to read audio stream", "err", err)
				}
				continue
			}

			if volume := calculateRMS16(in); volume > maxVolume {
				maxVolume = volume
			}

			samples := resampleInt16(in, int(device.DefaultSampleRate), m.SampleRate, m.Channels)

			select {
			case s.chunks <- wavfile.PCM16LE(samples):
			case <-s.stop:
				return
			}
		}
	}()

	return s, nil
}

type inputStream struct {
	chunks chan []byte
	stop   chan struct{}
	once   sync.Once
}

func (s *inputStream) ReadChunk() ([]byte, error) {
	b, ok := <-s.chunks
	if !ok {
		return nil, io.EOF
	}

	return b, nil
}

func (s *inputStream) Close() error {
	s.once.Do(func() {
		close(s.stop)
	})

	return nil
}
