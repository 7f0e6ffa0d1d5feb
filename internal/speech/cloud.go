package speech

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	speechapi "cloud.google.com/go/speech/apiv1"
	speechpb "cloud.google.com/go/speech/apiv1/speechpb"

	"github.com/Alijeyrad/gotalk-voicecode/internal/audio"
	"github.com/Alijeyrad/gotalk-voicecode/internal/session"
)

const (
	defaultCloudLanguage = "en-US"

	// cloudChunk is the amount of PCM sent per streaming request.
	cloudChunk = 32 << 10
)

// Cloud transcribes with the Google Cloud Speech API. Credentials come from
// GOOGLE_APPLICATION_CREDENTIALS or gcloud application default credentials.
type Cloud struct{}

var _ session.Transcriber = (*Cloud)(nil)

func NewCloud() *Cloud { return &Cloud{} }

func (c *Cloud) Name() string { return "google-cloud" }

func (c *Cloud) IsConfigured() bool { return HasCloudCredentials() }

// HasCloudCredentials reports whether Google Cloud credentials are configured.
func HasCloudCredentials() bool {
	if _, ok := os.LookupEnv("GOOGLE_APPLICATION_CREDENTIALS"); ok {
		return true
	}
	home, _ := os.UserHomeDir()
	adc := filepath.Join(home, ".config", "gcloud", "application_default_credentials.json")
	_, err := os.Stat(adc)
	return err == nil
}

// TestConnection checks that a client can be created with the credentials.
func (c *Cloud) TestConnection(ctx context.Context) bool {
	client, err := speechapi.NewClient(ctx)
	if err != nil {
		return false
	}
	client.Close()
	return true
}

// TranscribeAudio streams the 16 kHz LINEAR16 samples of the WAV file at path.
func (c *Cloud) TranscribeAudio(ctx context.Context, path, language string) (*session.Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading audio: %w", err)
	}
	pcm := audio.PCM(data)

	client, err := speechapi.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("creating speech client: %w", err)
	}
	defer client.Close()

	stream, err := client.StreamingRecognize(ctx)
	if err != nil {
		return nil, fmt.Errorf("creating stream: %w", err)
	}

	if err := stream.Send(&speechpb.StreamingRecognizeRequest{
		StreamingRequest: &speechpb.StreamingRecognizeRequest_StreamingConfig{
			StreamingConfig: &speechpb.StreamingRecognitionConfig{
				Config: &speechpb.RecognitionConfig{
					Encoding:                   speechpb.RecognitionConfig_LINEAR16,
					SampleRateHertz:            audio.SampleRate,
					LanguageCode:               cloudLanguage(language),
					EnableAutomaticPunctuation: true,
				},
				InterimResults: false,
			},
		},
	}); err != nil {
		return nil, fmt.Errorf("sending config: %w", err)
	}

	go func() {
		defer stream.CloseSend()
		for len(pcm) > 0 {
			n := min(cloudChunk, len(pcm))
			if err := stream.Send(&speechpb.StreamingRecognizeRequest{
				StreamingRequest: &speechpb.StreamingRecognizeRequest_AudioContent{
					AudioContent: pcm[:n],
				},
			}); err != nil {
				return
			}
			pcm = pcm[n:]
		}
	}()

	var (
		text       strings.Builder
		confidence float64
		finals     int
		lang       string
	)
	for {
		resp, err := stream.Recv()
		if err == io.EOF {
			break
		}
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, fmt.Errorf("receiving: %w", err)
		}
		for _, result := range resp.Results {
			if !result.IsFinal || len(result.Alternatives) == 0 {
				continue
			}
			alt := result.Alternatives[0]
			if text.Len() > 0 {
				text.WriteByte(' ')
			}
			text.WriteString(strings.TrimSpace(alt.Transcript))
			confidence += float64(alt.Confidence)
			finals++
			if result.LanguageCode != "" {
				lang = result.LanguageCode
			}
		}
	}

	res := &session.Result{
		Text:     text.String(),
		Language: lang,
		Duration: audio.Duration(audio.PCM(data)),
	}
	if res.Language == "" {
		res.Language = cloudLanguage(language)
	}
	if finals > 0 {
		res.Confidence = confidence / float64(finals)
	}
	return res, nil
}

// cloudLanguage turns an ISO-639-1 hint into a BCP-47 code. The Cloud API
// has no auto-detect, so an empty hint becomes en-US.
func cloudLanguage(hint string) string {
	hint = strings.TrimSpace(hint)
	switch {
	case hint == "":
		return defaultCloudLanguage
	case strings.Contains(hint, "-"):
		return hint
	}
	if region, ok := cloudRegions[strings.ToLower(hint)]; ok {
		return strings.ToLower(hint) + "-" + region
	}
	return hint
}

var cloudRegions = map[string]string{
	"en": "US",
	"pt": "BR",
	"es": "ES",
	"fr": "FR",
	"de": "DE",
	"it": "IT",
	"ja": "JP",
	"nl": "NL",
	"ru": "RU",
	"zh": "CN",
}
