package tts

import (
	"context"

	"pdf-to-sound-api/internal/logs"
	"pdf-to-sound-api/internal/speech"
)

type Synthesizer interface {
	Synthesize(ctx context.Context, text, languageCode, voiceName string) ([]byte, error)
}

type LogServicePort interface {
	Log(log logs.SystemLog, payload interface{}) error
}

type TtsServiceAPI interface {
	InitGeneration(text string) (int, error)
	ChunkLengths(text string) []int64
	SynthesizeChunk(ctx context.Context, text string, index int, languageCode, voiceName string) ([]byte, error)
	CombineChunks(segments [][]byte) ([]byte, error)
	SynthesizeText(ctx context.Context, text, languageCode, voiceName string) ([]byte, error)
}

var (
	_ TtsServiceAPI  = (*TtsService)(nil)
	_ Synthesizer    = (*speech.GoogleProvider)(nil)
	_ LogServicePort = (*logs.LogService)(nil)
	_ LogServicePort = logs.NopLogService{}
)
