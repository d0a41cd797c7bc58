package client

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const (
	wavBitDepth    = 16
	wavNumChannels = 1
)

// EncodeWav wraps raw little-endian 16-bit mono PCM samples in a WAV
// container.
func EncodeWav(pcm []byte, sampleRate int) ([]byte, error) {
	if len(pcm) == 0 {
		return nil, fmt.Errorf("empty pcm data")
	}
	if len(pcm)%2 != 0 {
		return nil, fmt.Errorf("pcm data is not 16-bit aligned: %d bytes", len(pcm))
	}

	samples := make([]int, len(pcm)/2)
	for i := range samples {
		samples[i] = int(int16(binary.LittleEndian.Uint16(pcm[i*2:])))
	}

	buf := &writeSeekBuffer{}
	enc := wav.NewEncoder(buf, sampleRate, wavBitDepth, wavNumChannels, 1)
	err := enc.Write(&audio.IntBuffer{
		Format:         &audio.Format{NumChannels: wavNumChannels, SampleRate: sampleRate},
		SourceBitDepth: wavBitDepth,
		Data:           samples,
	})
	if err != nil {
		return nil, fmt.Errorf("wav encode failed: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("wav finalize failed: %w", err)
	}
	return buf.data, nil
}

// writeSeekBuffer is the minimal io.WriteSeeker the wav encoder needs to
// backfill chunk sizes in the header.
type writeSeekBuffer struct {
	data []byte
	pos  int
}

func (b *writeSeekBuffer) Write(p []byte) (int, error) {
	if need := b.pos + len(p); need > len(b.data) {
		b.data = append(b.data, make([]byte, need-len(b.data))...)
	}
	copy(b.data[b.pos:], p)
	b.pos += len(p)
	return len(p), nil
}

func (b *writeSeekBuffer) Seek(offset int64, whence int) (int64, error) {
	var next int64
	switch whence {
	case io.SeekStart:
		next = offset
	case io.SeekCurrent:
		next = int64(b.pos) + offset
	case io.SeekEnd:
		next = int64(len(b.data)) + offset
	default:
		return 0, fmt.Errorf("invalid whence %d", whence)
	}
	if next < 0 {
		return 0, fmt.Errorf("negative seek position %d", next)
	}
	b.pos = int(next)
	return next, nil
}
