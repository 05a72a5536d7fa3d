// Package wavfile encodes and decodes 16 bit RIFF wave audio held in memory,
// including recordings that were streamed with an unknown length.
package wavfile

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/orcaman/writerseeker"
)

const (
	MimeType = "audio/wav"

	unknownSize = 0xFFFFFFFF
	headerSize  = 12
	chunkHeader = 8
)

// Encode encodes the given buffer as 16 bit RIFF wave.
func Encode(buffer audio.Buffer) ([]byte, error) {
	wavFile := &writerseeker.WriterSeeker{}
	f := buffer.PCMFormat()
	encoder := wav.NewEncoder(wavFile, f.SampleRate, 16, f.NumChannels, 1)

	if err := encoder.Write(buffer.AsIntBuffer()); err != nil {
		return nil, fmt.Errorf("encoder write buffer: %w", err)
	}

	if err := encoder.Close(); err != nil {
		return nil, fmt.Errorf("encoder close: %w", err)
	}

	riffWav, err := io.ReadAll(wavFile.Reader())
	if err != nil {
		return nil, fmt.Errorf("reading wav into memory: %w", err)
	}

	return riffWav, nil
}

// StreamingHeader returns a wave header whose data chunk size is unknown.
// PCM data can be appended to it as it is recorded.
func StreamingHeader(sampleRate, channels int) ([]byte, error) {
	riffWav, err := Encode(&audio.IntBuffer{
		Format:         &audio.Format{SampleRate: sampleRate, NumChannels: channels},
		SourceBitDepth: 16,
		Data:           []int{},
	})
	if err != nil {
		return nil, err
	}

	// Set RIFF and data sizes to the maximum value in order to make streaming work
	header := bytes.NewBuffer(make([]byte, 0, 44))
	header.Write(riffWav[:4])
	if err = binary.Write(header, binary.LittleEndian, uint32(unknownSize)); err != nil {
		return nil, fmt.Errorf("write riff length: %w", err)
	}
	header.Write(riffWav[8:40])
	if err = binary.Write(header, binary.LittleEndian, uint32(unknownSize)); err != nil {
		return nil, fmt.Errorf("write wav data length: %w", err)
	}

	return header.Bytes(), nil
}

// PCM16LE encodes samples as signed 16 bit little endian PCM.
func PCM16LE(samples []int16) []byte {
	b := make([]byte, 2*len(samples))
	for i, s := range samples {
		binary.LittleEndian.PutUint16(b[2*i:], uint16(s))
	}
	return b
}

// Finalize sets the RIFF and data chunk sizes of a streamed recording to the
// sizes of the data actually present.
// Complete files are returned unchanged, patched files are copies.
func Finalize(data []byte) []byte {
	if len(data) < headerSize || string(data[:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return data
	}

	var patched []byte

	patch := func(pos int, size uint32) {
		if patched == nil {
			patched = append([]byte(nil), data...)
		}
		binary.LittleEndian.PutUint32(patched[pos:], size)
	}

	if riffSize := binary.LittleEndian.Uint32(data[4:8]); riffSize == unknownSize || int64(riffSize) > int64(len(data)-8) {
		patch(4, uint32(len(data)-8))
	}

	for pos := headerSize; pos+chunkHeader <= len(data); {
		id := string(data[pos : pos+4])
		size := int64(binary.LittleEndian.Uint32(data[pos+4 : pos+8]))
		available := int64(len(data) - pos - chunkHeader)

		if id == "data" {
			if size > available {
				patch(pos+4, uint32(available))
			}
			break
		}

		if size > available {
			break
		}

		pos += chunkHeader + int(size) + int(size&1)
	}

	if patched == nil {
		return data
	}

	return patched
}

// Decode reads a complete or streamed 16 bit RIFF wave into memory.
func Decode(data []byte) (*audio.IntBuffer, error) {
	decoder := wav.NewDecoder(bytes.NewReader(Finalize(data)))

	decoder.ReadInfo()
	if err := decoder.Err(); err != nil {
		return nil, fmt.Errorf("read wave file headers: %w", err)
	}

	if !decoder.IsValidFile() {
		return nil, fmt.Errorf("invalid wave file")
	}

	if decoder.SampleBitDepth() != 16 {
		return nil, fmt.Errorf("wave data with unsupported bit depth of %d provided, expected 16", decoder.SampleBitDepth())
	}

	buffer, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("read full pcm buffer: %w", err)
	}

	buffer.SourceBitDepth = 16

	return buffer, nil
}

// Duration returns the play time of the given complete or streamed wave data.
func Duration(data []byte) (time.Duration, error) {
	decoder := wav.NewDecoder(bytes.NewReader(Finalize(data)))

	decoder.ReadInfo()
	if err := decoder.Err(); err != nil {
		return 0, fmt.Errorf("read wave file headers: %w", err)
	}

	if !decoder.IsValidFile() {
		return 0, fmt.Errorf("invalid wave file")
	}

	err := decoder.FwdToPCM()
	if err != nil {
		return 0, fmt.Errorf("find wave data chunk: %w", err)
	}

	bytesPerSecond := int64(decoder.SampleRate) * int64(decoder.NumChans) * int64(decoder.BitDepth) / 8
	if bytesPerSecond <= 0 {
		return 0, fmt.Errorf("invalid wave format: %d Hz, %d channels, %d bit", decoder.SampleRate, decoder.NumChans, decoder.BitDepth)
	}

	return time.Duration(int64(decoder.PCMSize) * int64(time.Second) / bytesPerSecond), nil
}
