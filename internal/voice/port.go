package voice

import (
	"context"

	"pdf-to-sound-api/internal/speech"
)

type VoiceLister interface {
	ListVoices(ctx context.Context, languageCode string) ([]speech.Voice, error)
}

type VoiceServiceAPI interface {
	GetVoices(ctx context.Context, languageCode string) ([]speech.Voice, error)
}

var (
	_ VoiceServiceAPI = (*VoiceService)(nil)
	_ VoiceLister     = (*speech.GoogleProvider)(nil)
)
