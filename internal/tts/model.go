package tts

import "errors"

var (
	ErrNoAudioChunks = errors.New("No audio chunks provided")
	ErrEmptyText     = errors.New("Text is required")
)

type InitRequest struct {
	Text string `json:"text"`
}

type SynthesizeChunkRequest struct {
	Text         string `json:"text"`
	ChunkIndex   *int   `json:"chunkIndex"`
	LanguageCode string `json:"languageCode"`
	VoiceName    string `json:"voiceName"`
}

type CombineChunksRequest struct {
	Chunks []string `json:"chunks"`
}

type SynthesizeTextRequest struct {
	Text         string `json:"text"`
	LanguageCode string `json:"languageCode"`
	VoiceName    string `json:"voiceName"`
}
