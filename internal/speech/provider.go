// Package speech talks to Google Cloud Text-to-Speech.
package speech

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"cloud.google.com/go/texttospeech/apiv1/texttospeechpb"
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
	"golang.org/x/time/rate"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"pdf-to-sound-api/internal/chunker"
	"pdf-to-sound-api/internal/metrics"
)

var (
	ErrInvalidVoice  = errors.New("invalid voice or language")
	ErrQuotaExceeded = errors.New("speech provider quota exceeded")
)

type Voice struct {
	Name                   string `json:"name"`
	Language               string `json:"language"`
	LanguageCode           string `json:"language_code"`
	Gender                 string `json:"gender"`
	NaturalSampleRateHertz int32  `json:"natural_sample_rate_hertz"`
}

type Options struct {
	RequestsPerSecond float64
	Burst             int
	ClientOptions     []option.ClientOption
}

// GoogleProvider synthesizes MP3 audio. Safe for concurrent use.
type GoogleProvider struct {
	client  ttsClient
	limiter *rate.Limiter
}

func NewGoogleProvider(ctx context.Context, opts Options) (*GoogleProvider, error) {
	client, err := newTTSClientHook(ctx, opts.ClientOptions...)
	if err != nil {
		return nil, fmt.Errorf("create text-to-speech client: %w", err)
	}

	limit := rate.Inf
	if opts.RequestsPerSecond > 0 {
		limit = rate.Limit(opts.RequestsPerSecond)
	}
	burst := opts.Burst
	if burst <= 0 {
		burst = 1
	}

	return &GoogleProvider{client: client, limiter: rate.NewLimiter(limit, burst)}, nil
}

func (p *GoogleProvider) Close() error {
	return p.client.Close()
}

// Synthesize returns MP3 bytes for text spoken by voiceName in languageCode.
func (p *GoogleProvider) Synthesize(ctx context.Context, text, languageCode, voiceName string) (audio []byte, err error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	start := time.Now()
	defer func() { metrics.ObserveProviderCall("synthesize", start, err) }()

	text = strings.TrimSpace(text)
	if !chunker.HasTerminalPunctuation(text) {
		text += "."
	}

	resp, err := p.client.SynthesizeSpeech(ctx, &texttospeechpb.SynthesizeSpeechRequest{
		Input: &texttospeechpb.SynthesisInput{
			InputSource: &texttospeechpb.SynthesisInput_Text{Text: text},
		},
		Voice: &texttospeechpb.VoiceSelectionParams{
			LanguageCode: languageCode,
			Name:         voiceName,
		},
		AudioConfig: &texttospeechpb.AudioConfig{
			AudioEncoding: texttospeechpb.AudioEncoding_MP3,
		},
	})
	if err != nil {
		return nil, classify(err)
	}
	return resp.GetAudioContent(), nil
}

// ListVoices returns the voices available for languageCode (all voices when empty),
// sorted by language and then name.
func (p *GoogleProvider) ListVoices(ctx context.Context, languageCode string) (voices []Voice, err error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	start := time.Now()
	defer func() { metrics.ObserveProviderCall("list_voices", start, err) }()

	resp, err := p.client.ListVoices(ctx, &texttospeechpb.ListVoicesRequest{LanguageCode: languageCode})
	if err != nil {
		return nil, classify(err)
	}

	for _, v := range resp.GetVoices() {
		for _, code := range v.GetLanguageCodes() {
			voices = append(voices, Voice{
				Name:                   v.GetName(),
				Language:               LanguageName(code),
				LanguageCode:           code,
				Gender:                 v.GetSsmlGender().String(),
				NaturalSampleRateHertz: v.GetNaturalSampleRateHertz(),
			})
		}
	}

	sort.Slice(voices, func(i, j int) bool {
		if voices[i].Language != voices[j].Language {
			return voices[i].Language < voices[j].Language
		}
		return voices[i].Name < voices[j].Name
	})
	return voices, nil
}

// LanguageName renders a BCP 47 code as an English display name, e.g.
// "en-US" -> "American English". Unknown codes are returned unchanged.
func LanguageName(code string) string {
	tag, err := language.Parse(code)
	if err != nil {
		return code
	}
	if name := display.English.Tags().Name(tag); name != "" {
		return name
	}
	return code
}

func classify(err error) error {
	st, ok := status.FromError(err)
	if !ok {
		return fmt.Errorf("speech provider: %w", err)
	}
	switch st.Code() {
	case codes.InvalidArgument, codes.NotFound:
		return fmt.Errorf("%w: %s", ErrInvalidVoice, st.Message())
	case codes.ResourceExhausted:
		return fmt.Errorf("%w: %s", ErrQuotaExceeded, st.Message())
	default:
		return fmt.Errorf("speech provider: %w", err)
	}
}
