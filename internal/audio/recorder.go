// Package audio records 16 kHz mono microphone audio from PulseAudio.
package audio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/jfreymuth/pulse"
	"github.com/jfreymuth/pulse/proto"

	"github.com/Alijeyrad/gotalk-voicecode/internal/session"
)

// SampleRate is the capture rate in Hz. Samples are signed 16-bit little endian.
const SampleRate = 16000

var (
	ErrBusy         = errors.New("audio: already capturing")
	ErrNotCapturing = errors.New("audio: not capturing")
)

// Recorder implements session.Capturer.
type Recorder struct {
	// Name is shown in the PulseAudio mixer.
	Name string

	mu     sync.Mutex
	client *pulse.Client
	stream *pulse.RecordStream
	cancel context.CancelFunc

	pcm  *bytes.Buffer
	done chan struct{}
}

var _ session.Capturer = (*Recorder)(nil)

// rawWriter implements pulse.Writer, forwarding raw S16_LE bytes to a channel.
type rawWriter struct {
	ch  chan<- []byte
	ctx context.Context
}

func (w *rawWriter) Write(buf []byte) (int, error) {
	chunk := make([]byte, len(buf))
	copy(chunk, buf)
	select {
	case w.ch <- chunk:
		return len(buf), nil
	case <-w.ctx.Done():
		return 0, w.ctx.Err()
	}
}

func (w *rawWriter) Format() byte { return proto.FormatInt16LE }

func (r *Recorder) name() string {
	if r.Name == "" {
		return "GoTalk VoiceCode"
	}
	return r.Name
}

// Start opens a record stream and returns its PCM chunks. The channel is
// closed after Stop or when ctx is done.
func (r *Recorder) Start(ctx context.Context) (<-chan []byte, error) {
	r.Stop()

	ctx, cancel := context.WithCancel(ctx)
	r.cancel = cancel

	client, err := pulse.NewClient(
		pulse.ClientApplicationName(r.name()),
	)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("connecting to PulseAudio: %w", err)
	}

	ch := make(chan []byte, 16)
	w := &rawWriter{ch: ch, ctx: ctx}

	stream, err := client.NewRecord(w,
		pulse.RecordMono,
		pulse.RecordSampleRate(SampleRate),
		pulse.RecordMediaName(r.name()),
	)
	if err != nil {
		client.Close()
		cancel()
		return nil, fmt.Errorf("creating record stream: %w", err)
	}

	stream.Start()
	r.client = client
	r.stream = stream

	go func() {
		defer close(ch)
		<-ctx.Done()
		stream.Stop()
		stream.Close()
		client.Close()
	}()

	return ch, nil
}

func (r *Recorder) Stop() {
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
}

// StartCapture begins buffering microphone audio.
func (r *Recorder) StartCapture(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.done != nil {
		return ErrBusy
	}

	ch, err := r.Start(ctx)
	if err != nil {
		return err
	}
	pcm := new(bytes.Buffer)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for chunk := range ch {
			pcm.Write(chunk)
		}
	}()
	r.pcm, r.done = pcm, done
	return nil
}

// StopCapture ends the recording and returns it as a WAV file.
func (r *Recorder) StopCapture(ctx context.Context) (session.Capture, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.done == nil {
		return session.Capture{}, ErrNotCapturing
	}

	r.Stop()
	done, pcm := r.done, r.pcm
	r.done, r.pcm = nil, nil
	select {
	case <-done:
	case <-ctx.Done():
		return session.Capture{}, ctx.Err()
	}

	raw := pcm.Bytes()
	return session.Capture{
		Audio:    EncodeWAV(raw),
		Duration: Duration(raw),
	}, nil
}
