// Package voice lists the provider's voices for the client's picker.
package voice

import (
	"context"
	"strings"
	"sync"
	"time"

	"pdf-to-sound-api/internal/speech"
)

type cacheEntry struct {
	voices  []speech.Voice
	expires time.Time
}

type VoiceService struct {
	Lister VoiceLister
	TTL    time.Duration

	now   func() time.Time
	mu    sync.Mutex
	cache map[string]cacheEntry
}

func NewVoiceService(lister VoiceLister, ttl time.Duration) *VoiceService {
	return &VoiceService{
		Lister: lister,
		TTL:    ttl,
		now:    time.Now,
		cache:  map[string]cacheEntry{},
	}
}

// GetVoices returns the voices for languageCode, or every voice when it is empty.
// Results are cached per language for TTL; failures are not cached.
func (s *VoiceService) GetVoices(ctx context.Context, languageCode string) ([]speech.Voice, error) {
	key := strings.TrimSpace(languageCode)

	if s.TTL > 0 {
		s.mu.Lock()
		e, ok := s.cache[key]
		s.mu.Unlock()
		if ok && s.now().Before(e.expires) {
			return e.voices, nil
		}
	}

	voices, err := s.Lister.ListVoices(ctx, key)
	if err != nil {
		return nil, err
	}
	if voices == nil {
		voices = []speech.Voice{}
	}

	if s.TTL > 0 {
		s.mu.Lock()
		s.cache[key] = cacheEntry{voices: voices, expires: s.now().Add(s.TTL)}
		s.mu.Unlock()
	}
	return voices, nil
}
