// Package tts exposes chunked text-to-speech generation over HTTP.
package tts

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"sync"

	"github.com/golang/groupcache/lru"
	"golang.org/x/sync/errgroup"

	"pdf-to-sound-api/internal/audio"
	"pdf-to-sound-api/internal/chunker"
	"pdf-to-sound-api/internal/metrics"
)

type TtsService struct {
	Chunker        chunker.Chunker
	Synthesizer    Synthesizer
	MaxConcurrency int

	mu    sync.Mutex
	cache *lru.Cache // chunk lists by text hash; nil disables caching
}

func NewTtsService(synth Synthesizer, maxChunkLength, cacheSize, maxConcurrency int) *TtsService {
	s := &TtsService{
		Chunker:        chunker.New(maxChunkLength),
		Synthesizer:    synth,
		MaxConcurrency: maxConcurrency,
	}
	if cacheSize > 0 {
		s.cache = lru.New(cacheSize)
	}
	return s
}

// InitGeneration reports how many chunks text splits into.
func (s *TtsService) InitGeneration(text string) (int, error) {
	n := len(s.chunks(text))
	metrics.ObserveChunks(n)
	return n, nil
}

func (s *TtsService) ChunkLengths(text string) []int64 {
	chunks := s.chunks(text)
	out := make([]int64, len(chunks))
	for i, c := range chunks {
		out[i] = int64(len([]rune(c.Content)))
	}
	return out
}

// SynthesizeChunk re-splits text and synthesizes the chunk at index. The
// index is validated before the provider is called.
func (s *TtsService) SynthesizeChunk(ctx context.Context, text string, index int, languageCode, voiceName string) ([]byte, error) {
	chunks := s.chunks(text)
	if index < 0 || index >= len(chunks) {
		return nil, fmt.Errorf("%w: index %d, total chunks %d", chunker.ErrIndexOutOfRange, index, len(chunks))
	}
	return s.Synthesizer.Synthesize(ctx, chunks[index].Content, languageCode, voiceName)
}

func (s *TtsService) CombineChunks(segments [][]byte) ([]byte, error) {
	if len(segments) == 0 {
		return nil, ErrNoAudioChunks
	}
	out := audio.Combine(segments)
	metrics.AddCombinedBytes(len(out))
	return out, nil
}

// SynthesizeText synthesizes every chunk of text concurrently and returns
// the segments concatenated in chunk order.
func (s *TtsService) SynthesizeText(ctx context.Context, text, languageCode, voiceName string) ([]byte, error) {
	chunks := s.chunks(text)
	if len(chunks) == 0 {
		return nil, ErrEmptyText
	}
	metrics.ObserveChunks(len(chunks))

	segments := make([][]byte, len(chunks))

	g, gctx := errgroup.WithContext(ctx)
	if s.MaxConcurrency > 0 {
		g.SetLimit(s.MaxConcurrency)
	}
	for i, c := range chunks {
		g.Go(func() error {
			data, err := s.Synthesizer.Synthesize(gctx, c.Content, languageCode, voiceName)
			if err != nil {
				return err
			}
			segments[i] = data
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return s.CombineChunks(segments)
}

func (s *TtsService) chunks(text string) []chunker.Chunk {
	if s.cache == nil {
		return s.Chunker.Chunk(text)
	}

	sum := sha256.Sum256([]byte(text))
	key := hex.EncodeToString(sum[:]) + ":" + strconv.Itoa(s.Chunker.MaxLength)

	s.mu.Lock()
	if v, ok := s.cache.Get(key); ok {
		s.mu.Unlock()
		return v.([]chunker.Chunk)
	}
	s.mu.Unlock()

	chunks := s.Chunker.Chunk(text)

	s.mu.Lock()
	s.cache.Add(key, chunks)
	s.mu.Unlock()
	return chunks
}
