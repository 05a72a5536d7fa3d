package soundgen

import (
	"fmt"
	"math"
	"time"

	"github.com/go-audio/audio"

	"github.com/mgoltzsche/voicechat/internal/wavfile"
)

// Generator synthesizes short notification tones as wave clips.
type Generator struct {
	SampleRate int
}

// Tone returns a sine tone of the given frequency and duration encoded as 16 bit mono wave.
func (g *Generator) Tone(frequency float64, duration time.Duration) ([]byte, error) {
	if g.SampleRate <= 0 {
		return nil, fmt.Errorf("generate tone: invalid sample rate %d", g.SampleRate)
	}

	data := make([]int, int(math.Ceil(float64(duration)*float64(g.SampleRate)/float64(time.Second))))
	fade := len(data) / 20
	for i := range data {
		phase := frequency * float64(i) / float64(g.SampleRate)
		amplitude := 0.5 * 32767

		// fade in and out to avoid clicks
		if i < fade {
			amplitude *= float64(i) / float64(fade)
		} else if j := len(data) - i - 1; j < fade {
			amplitude *= float64(j) / float64(fade)
		}

		data[i] = int(math.Sin(2*math.Pi*phase) * amplitude)
	}

	buf := &audio.IntBuffer{
		Format:         &audio.Format{SampleRate: g.SampleRate, NumChannels: 1},
		Data:           data,
		SourceBitDepth: 16,
	}

	return wavfile.Encode(buf)
}
