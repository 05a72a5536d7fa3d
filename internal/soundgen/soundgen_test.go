package soundgen

import (
	"bytes"
	"testing"
	"time"

	"github.com/go-audio/wav"
	"github.com/stretchr/testify/require"
)

func TestTone(t *testing.T) {
	testee := &Generator{SampleRate: 16000}

	b, err := testee.Tone(440, 300*time.Millisecond)
	require.NoError(t, err)

	decoder := wav.NewDecoder(bytes.NewReader(b))
	require.True(t, decoder.IsValidFile())

	buf, err := decoder.FullPCMBuffer()
	require.NoError(t, err)
	require.Equal(t, 16000, buf.Format.SampleRate)
	require.Equal(t, 1, buf.Format.NumChannels)
	require.Len(t, buf.Data, 4800)
	require.Equal(t, 0, buf.Data[0], "faded in")
	require.NotZero(t, buf.Data[len(buf.Data)/2+7])
}

func TestToneInvalidSampleRate(t *testing.T) {
	_, err := (&Generator{}).Tone(440, time.Second)
	require.Error(t, err)
}
