package audio

import (
	"bytes"
	"encoding/binary"
)

// EncodeWAV wraps raw 16-bit mono PCM at SampleRate in a WAV container.
func EncodeWAV(pcm []byte) []byte {
	var buf bytes.Buffer
	size := uint32(len(pcm))
	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, size+36) //nolint:errcheck
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	binary.Write(&buf, binary.LittleEndian, uint32(16))           //nolint:errcheck
	binary.Write(&buf, binary.LittleEndian, uint16(1))            //nolint:errcheck // PCM
	binary.Write(&buf, binary.LittleEndian, uint16(1))            //nolint:errcheck // mono
	binary.Write(&buf, binary.LittleEndian, uint32(SampleRate))   //nolint:errcheck
	binary.Write(&buf, binary.LittleEndian, uint32(SampleRate*2)) //nolint:errcheck
	binary.Write(&buf, binary.LittleEndian, uint16(2))            //nolint:errcheck
	binary.Write(&buf, binary.LittleEndian, uint16(16))           //nolint:errcheck
	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, size) //nolint:errcheck
	buf.Write(pcm)
	return buf.Bytes()
}

// WAVHeaderSize is the length of the header written by EncodeWAV.
const WAVHeaderSize = 44

// PCM returns the samples of a WAV produced by EncodeWAV, or wav itself if
// it has no RIFF header.
func PCM(wav []byte) []byte {
	if len(wav) >= WAVHeaderSize && string(wav[:4]) == "RIFF" && string(wav[8:12]) == "WAVE" {
		return wav[WAVHeaderSize:]
	}
	return wav
}

// Duration returns the length in seconds of raw PCM at SampleRate.
func Duration(pcm []byte) float64 {
	return float64(len(pcm)) / float64(SampleRate*2)
}
