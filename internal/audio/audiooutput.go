package audio

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gordonklaus/portaudio"

	"github.com/mgoltzsche/voicechat/internal/playback"
	"github.com/mgoltzsche/voicechat/internal/wavfile"
)

var (
	_ playback.Decoder = &Speaker{}
	_ playback.Player  = &Speaker{}
)

// Clip is decoded 16 bit PCM audio.
type Clip struct {
	Samples    []int16
	SampleRate int
	Channels   int
}

func (c *Clip) Duration() time.Duration {
	if c.SampleRate <= 0 || c.Channels <= 0 {
		return 0
	}

	frames := len(c.Samples) / c.Channels

	return time.Duration(frames) * time.Second / time.Duration(c.SampleRate)
}

// Speaker decodes wave audio and plays it on a portaudio output device.
// The output device is resolved on first use and reused afterwards.
type Speaker struct {
	Device string
	once   sync.Once
	device *portaudio.DeviceInfo
	err    error
}

func (s *Speaker) outputDevice() (*portaudio.DeviceInfo, error) {
	s.once.Do(func() {
		s.device, s.err = outputDevice(s.Device)
	})

	return s.device, s.err
}

func (s *Speaker) Decode(_ context.Context, data []byte) (playback.Clip, error) {
	buf, err := wavfile.Decode(data)
	if err != nil {
		return nil, err
	}

	return &Clip{
		Samples:    intToInt16(buf.Data),
		SampleRate: buf.Format.SampleRate,
		Channels:   buf.Format.NumChannels,
	}, nil
}

// Play plays the clip and returns when playback completed or the context is done.
func (s *Speaker) Play(ctx context.Context, c playback.Clip) error {
	clip, ok := c.(*Clip)
	if !ok {
		return fmt.Errorf("unsupported clip type %T", c)
	}

	device, err := s.outputDevice()
	if err != nil {
		return err
	}

	samples := resampleInt16(clip.Samples, clip.SampleRate, int(device.DefaultSampleRate), clip.Channels)
	framesPerBuffer := 512 * 9
	out := make([]int16, framesPerBuffer*clip.Channels)

	stream, err := portaudio.OpenStream(portaudio.StreamParameters{
		Output: portaudio.StreamDeviceParameters{
			Device:   device,
			Channels: clip.Channels,
			Latency:  device.DefaultLowOutputLatency,
		},
		SampleRate:      device.DefaultSampleRate,
		FramesPerBuffer: framesPerBuffer,
	}, &out)
	if err != nil {
		return fmt.Errorf("open audio output stream: %w", err)
	}
	defer stream.Close()

	err = stream.Start()
	if err != nil {
		return fmt.Errorf("start audio output stream: %w", err)
	}
	defer stream.Stop()

	startTime := time.Now()

	for pos := 0; pos < len(samples); pos += len(out) {
		n := copy(out, samples[pos:])
		for i := n; i < len(out); i++ { // zero-pad the buffer after short chunk
			out[i] = 0
		}

		err = stream.Write()
		if err != nil {
			// Output underflows happen occasionally and don't impact playback significantly.
			slog.Warn(fmt.Sprintf("play audio: write chunk: %s", err))
		}

		select {
		case <-ctx.Done():
			return nil
		default:
		}
	}

	// Wait for the audio to complete playing
	select {
	case <-ctx.Done():
	case <-time.After(clip.Duration() - time.Since(startTime)):
	}

	return nil
}

func intToInt16(input []int) []int16 {
	output := make([]int16, len(input))
	for i, value := range input {
		output[i] = int16(value)
	}
	return output
}
