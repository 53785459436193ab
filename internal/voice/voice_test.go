package voice

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"pdf-to-sound-api/internal/speech"
)

type fakeLister struct {
	calls    int
	lastLang string
	voices   []speech.Voice
	err      error
}

func (f *fakeLister) ListVoices(_ context.Context, languageCode string) ([]speech.Voice, error) {
	f.calls++
	f.lastLang = languageCode
	return f.voices, f.err
}

var sampleVoices = []speech.Voice{
	{Name: "en-US-Wavenet-A", Language: "American English", LanguageCode: "en-US", Gender: "MALE"},
	{Name: "fr-FR-Standard-A", Language: "French (France)", LanguageCode: "fr-FR", Gender: "FEMALE"},
}

func TestGetVoices_CachesPerLanguage(t *testing.T) {
	fake := &fakeLister{voices: sampleVoices}
	s := NewVoiceService(fake, time.Hour)

	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		if _, err := s.GetVoices(context.Background(), ""); err != nil {
			t.Fatalf("unexpected err: %v", err)
		}
	}
	if fake.calls != 1 {
		t.Fatalf("expected 1 provider call, got %d", fake.calls)
	}

	if _, err := s.GetVoices(context.Background(), " fr-FR "); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if fake.calls != 2 || fake.lastLang != "fr-FR" {
		t.Fatalf("expected separate fetch for fr-FR, calls=%d lang=%q", fake.calls, fake.lastLang)
	}

	now = now.Add(2 * time.Hour)
	if _, err := s.GetVoices(context.Background(), ""); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if fake.calls != 3 {
		t.Fatalf("expected refetch after expiry, got %d calls", fake.calls)
	}
}

func TestGetVoices_ErrorsNotCached(t *testing.T) {
	fake := &fakeLister{err: errors.New("down")}
	s := NewVoiceService(fake, time.Hour)

	if _, err := s.GetVoices(context.Background(), ""); err == nil {
		t.Fatalf("expected error")
	}

	fake.err = nil
	fake.voices = sampleVoices
	got, err := s.GetVoices(context.Background(), "")
	if err != nil || len(got) != 2 {
		t.Fatalf("expected recovery, got %v %v", got, err)
	}
}

func TestGetVoices_NoTTLAlwaysFetches(t *testing.T) {
	fake := &fakeLister{}
	s := NewVoiceService(fake, 0)

	got, _ := s.GetVoices(context.Background(), "")
	_, _ = s.GetVoices(context.Background(), "")
	if fake.calls != 2 {
		t.Fatalf("expected 2 calls, got %d", fake.calls)
	}
	if got == nil {
		t.Fatalf("expected empty non-nil slice")
	}
}

func setupRouter(s VoiceServiceAPI) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	RegisterRoutes(r, s)
	return r
}

func TestVoicesEndpoint(t *testing.T) {
	fake := &fakeLister{voices: sampleVoices}
	r := setupRouter(NewVoiceService(fake, time.Minute))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/google_voices/voices?language_code=en-US", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", w.Code)
	}
	if fake.lastLang != "en-US" {
		t.Fatalf("expected language filter passed, got %q", fake.lastLang)
	}

	var got []map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(got) != 2 || got[0]["name"] != "en-US-Wavenet-A" || got[0]["language_code"] != "en-US" || got[1]["gender"] != "FEMALE" {
		t.Fatalf("unexpected body %s", w.Body.String())
	}
}

func TestVoicesEndpoint_ProviderError(t *testing.T) {
	r := setupRouter(NewVoiceService(&fakeLister{err: errors.New("down")}, time.Minute))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/google_voices/voices", nil))

	if w.Code != http.StatusBadGateway {
		t.Fatalf("expected 502 got %d", w.Code)
	}
}
