package wavfile

import (
	"encoding/binary"
	"testing"
	"time"

	"github.com/go-audio/audio"
	"github.com/stretchr/testify/require"
)

func sineWave(samples int) []int {
	data := make([]int, samples)
	for i := range data {
		data[i] = (i%100 - 50) * 300
	}
	return data
}

func int16Samples(data []int) []int16 {
	samples := make([]int16, len(data))
	for i, v := range data {
		samples[i] = int16(v)
	}
	return samples
}

// streamedRecording assembles a recording the way the microphone emits it:
// a header of unknown length followed by PCM chunks.
func streamedRecording(t *testing.T, data []int, chunkSize int) []byte {
	header, err := StreamingHeader(16000, 1)
	require.NoError(t, err)

	b := header
	samples := int16Samples(data)
	for len(samples) > 0 {
		n := min(chunkSize, len(samples))
		b = append(b, PCM16LE(samples[:n])...)
		samples = samples[n:]
	}

	return b
}

func TestEncodeDecode(t *testing.T) {
	data := sineWave(16000)
	b, err := Encode(&audio.IntBuffer{
		Format:         &audio.Format{SampleRate: 16000, NumChannels: 1},
		SourceBitDepth: 16,
		Data:           data,
	})
	require.NoError(t, err)

	buf, err := Decode(b)
	require.NoError(t, err)
	require.Equal(t, 16000, buf.Format.SampleRate)
	require.Equal(t, 1, buf.Format.NumChannels)
	require.Equal(t, data, buf.Data)

	d, err := Duration(b)
	require.NoError(t, err)
	require.Equal(t, time.Second, d)
}

func TestDecodeStreamedRecording(t *testing.T) {
	data := sineWave(1600)
	recording := streamedRecording(t, data, 512)
	require.Len(t, recording, 44+3200)

	buf, err := Decode(recording)
	require.NoError(t, err)
	require.Equal(t, data, buf.Data)

	d, err := Duration(recording)
	require.NoError(t, err)
	require.Equal(t, 100*time.Millisecond, d)

	expected, err := Encode(buf)
	require.NoError(t, err)
	require.Equal(t, expected, Finalize(recording), "finalized recording")
	require.Equal(t, uint32(0xFFFFFFFF), binary.LittleEndian.Uint32(recording[40:44]), "input must not be modified")
}

func TestFinalizeKeepsCompleteFile(t *testing.T) {
	b, err := Encode(&audio.IntBuffer{
		Format:         &audio.Format{SampleRate: 16000, NumChannels: 1},
		SourceBitDepth: 16,
		Data:           sineWave(10),
	})
	require.NoError(t, err)

	require.Equal(t, b, Finalize(b))
	require.Equal(t, []byte("c1c2c3"), Finalize([]byte("c1c2c3")))
}

func TestDecodeRejectsGarbage(t *testing.T) {
	_, err := Decode([]byte("definitely not a wave file"))
	require.Error(t, err)

	_, err = Decode(nil)
	require.Error(t, err)

	_, err = Duration([]byte("c1c2c3"))
	require.Error(t, err)
}

func TestStreamingHeader(t *testing.T) {
	header, err := StreamingHeader(16000, 1)
	require.NoError(t, err)
	require.Len(t, header, 44)
	require.Equal(t, "RIFF", string(header[:4]))
	require.Equal(t, "WAVE", string(header[8:12]))
	require.Equal(t, "data", string(header[36:40]))
	require.Equal(t, uint32(0xFFFFFFFF), binary.LittleEndian.Uint32(header[4:8]))
	require.Equal(t, uint32(0xFFFFFFFF), binary.LittleEndian.Uint32(header[40:44]))
	require.Equal(t, uint32(16000), binary.LittleEndian.Uint32(header[24:28]), "sample rate")
}

func TestPCM16LE(t *testing.T) {
	require.Equal(t, []byte{0x01, 0x00, 0xff, 0xff, 0x00, 0x80}, PCM16LE([]int16{1, -1, -32768}))
}
