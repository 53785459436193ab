package export

import (
	"errors"
	"time"
)

var ErrNoAudioChunks = errors.New("No audio chunks provided")

type ExportRequest struct {
	Chunks []string `json:"chunks"`
	Title  string   `json:"title"`
}

type ExportResult struct {
	URL       string `json:"url"`
	SignedURL string `json:"signed_url"`
	Object    string `json:"object"`
	Size      int64  `json:"size"`
}

type ExportItem struct {
	Object    string    `json:"object"`
	Name      string    `json:"name"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"created_at"`
	SignedURL string    `json:"signed_url"`
}
