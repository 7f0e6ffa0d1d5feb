package audio

import (
	"encoding/binary"
	"testing"
)

func TestEncodeWAVHeader(t *testing.T) {
	pcm := make([]byte, 3200)
	wav := EncodeWAV(pcm)

	if len(wav) != WAVHeaderSize+len(pcm) {
		t.Fatalf("len = %d, want %d", len(wav), WAVHeaderSize+len(pcm))
	}
	if string(wav[0:4]) != "RIFF" || string(wav[8:12]) != "WAVE" || string(wav[12:16]) != "fmt " || string(wav[36:40]) != "data" {
		t.Errorf("bad chunk ids: %q", wav[:40])
	}
	tests := []struct {
		name string
		off  int
		want uint32
	}{
		{"riff size", 4, uint32(len(pcm) + 36)},
		{"sample rate", 24, SampleRate},
		{"byte rate", 28, SampleRate * 2},
		{"data size", 40, uint32(len(pcm))},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := binary.LittleEndian.Uint32(wav[tc.off:]); got != tc.want {
				t.Errorf("got %d, want %d", got, tc.want)
			}
		})
	}
	if ch := binary.LittleEndian.Uint16(wav[22:]); ch != 1 {
		t.Errorf("channels = %d, want 1", ch)
	}
	if bits := binary.LittleEndian.Uint16(wav[34:]); bits != 16 {
		t.Errorf("bits = %d, want 16", bits)
	}
}

func TestPCMStripsHeader(t *testing.T) {
	pcm := []byte{1, 2, 3, 4}
	if got := PCM(EncodeWAV(pcm)); string(got) != string(pcm) {
		t.Errorf("PCM() = %v, want %v", got, pcm)
	}
	if got := PCM(pcm); string(got) != string(pcm) {
		t.Errorf("PCM() on raw = %v", got)
	}
}

func TestDuration(t *testing.T) {
	if d := Duration(make([]byte, SampleRate*2*3)); d != 3 {
		t.Errorf("Duration = %v, want 3", d)
	}
	if d := Duration(nil); d != 0 {
		t.Errorf("Duration(nil) = %v", d)
	}
}

func TestStopCaptureWithoutStart(t *testing.T) {
	r := &Recorder{}
	if _, err := r.StopCapture(t.Context()); err != ErrNotCapturing {
		t.Errorf("err = %v, want ErrNotCapturing", err)
	}
}
