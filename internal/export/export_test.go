package export

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"cloud.google.com/go/storage"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"pdf-to-sound-api/internal/logs"
)

// ---- fake storage ----

type fakeStore struct {
	mu       sync.Mutex
	objects  map[string][]byte
	types    map[string]string
	attrs    []*storage.ObjectAttrs
	listErr  error
	writeErr error
	signErr  error
	lastQ    *storage.Query
	closed   bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{objects: map[string][]byte{}, types: map[string]string{}}
}

type fakeClient struct{ s *fakeStore }
type fakeBucket struct {
	s    *fakeStore
	name string
}
type fakeObject struct {
	s    *fakeStore
	name string
}
type fakeWriter struct {
	o   fakeObject
	ct  string
	buf bytes.Buffer
}
type fakeIterator struct {
	items []*storage.ObjectAttrs
	err   error
}

func (c fakeClient) Bucket(name string) gcsBucket { return fakeBucket{s: c.s, name: name} }
func (c fakeClient) Close() error {
	c.s.closed = true
	return nil
}

func (b fakeBucket) Object(name string) gcsObject { return fakeObject{s: b.s, name: name} }
func (b fakeBucket) Objects(_ context.Context, q *storage.Query) objectIterator {
	b.s.lastQ = q
	if b.s.listErr != nil {
		return &fakeIterator{err: b.s.listErr}
	}
	var out []*storage.ObjectAttrs
	for _, a := range b.s.attrs {
		if strings.HasPrefix(a.Name, q.Prefix) {
			out = append(out, a)
		}
	}
	return &fakeIterator{items: out}
}
func (b fakeBucket) SignedURL(object string, _ *storage.SignedURLOptions) (string, error) {
	if b.s.signErr != nil {
		return "", b.s.signErr
	}
	return "https://signed.example/" + b.name + "/" + object, nil
}

func (o fakeObject) NewWriter(_ context.Context, contentType string) io.WriteCloser {
	return &fakeWriter{o: o, ct: contentType}
}

func (w *fakeWriter) Write(p []byte) (int, error) {
	if w.o.s.writeErr != nil {
		return 0, w.o.s.writeErr
	}
	return w.buf.Write(p)
}
func (w *fakeWriter) Close() error {
	w.o.s.mu.Lock()
	defer w.o.s.mu.Unlock()
	w.o.s.objects[w.o.name] = w.buf.Bytes()
	w.o.s.types[w.o.name] = w.ct
	return nil
}

func (it *fakeIterator) Next() (*storage.ObjectAttrs, error) {
	if it.err != nil {
		return nil, it.err
	}
	if len(it.items) == 0 {
		return nil, iterator.Done
	}
	a := it.items[0]
	it.items = it.items[1:]
	return a, nil
}

func newTestService(t *testing.T, store *fakeStore) *ExportService {
	t.Helper()

	old := newGCSClientHook
	newGCSClientHook = func(_ context.Context, _ ...option.ClientOption) (gcsClient, error) {
		return fakeClient{s: store}, nil
	}
	t.Cleanup(func() { newGCSClientHook = old })

	s, err := NewExportService(context.Background(), "audio-bucket", 0)
	if err != nil {
		t.Fatalf("NewExportService: %v", err)
	}
	s.now = func() time.Time { return time.Date(2026, 5, 6, 7, 8, 9, 0, time.UTC) }
	s.newID = func() string { return "id1" }
	return s
}

// ---- service ----

func TestNewExportService_ClientError(t *testing.T) {
	old := newGCSClientHook
	newGCSClientHook = func(_ context.Context, _ ...option.ClientOption) (gcsClient, error) {
		return nil, errors.New("no creds")
	}
	t.Cleanup(func() { newGCSClientHook = old })

	if _, err := NewExportService(context.Background(), "b", time.Minute); err == nil {
		t.Fatalf("expected error")
	}
}

func TestUpload_WritesCombinedObject(t *testing.T) {
	store := newFakeStore()
	s := newTestService(t, store)

	res, err := s.Upload(context.Background(), 7, "My Book", [][]byte{[]byte("ab"), []byte("cd")})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	wantObj := "exports/7/20260506T070809_my_book_id1.mp3"
	if res.Object != wantObj || res.Size != 4 {
		t.Fatalf("unexpected result %+v", res)
	}
	if res.URL != "gs://audio-bucket/"+wantObj {
		t.Fatalf("unexpected url %q", res.URL)
	}
	if res.SignedURL != "https://signed.example/audio-bucket/"+wantObj {
		t.Fatalf("unexpected signed url %q", res.SignedURL)
	}
	if string(store.objects[wantObj]) != "abcd" || store.types[wantObj] != "audio/mpeg" {
		t.Fatalf("unexpected stored object %q %q", store.objects[wantObj], store.types[wantObj])
	}
	if s.SignedURLTTL != time.Hour {
		t.Fatalf("expected default ttl, got %v", s.SignedURLTTL)
	}
}

func TestUpload_Errors(t *testing.T) {
	store := newFakeStore()
	s := newTestService(t, store)

	if _, err := s.Upload(context.Background(), 1, "x", nil); !errors.Is(err, ErrNoAudioChunks) {
		t.Fatalf("expected ErrNoAudioChunks, got %v", err)
	}

	store.writeErr = errors.New("disk full")
	if _, err := s.Upload(context.Background(), 1, "x", [][]byte{[]byte("a")}); err == nil {
		t.Fatalf("expected write error")
	}
}

func TestUpload_UnsignableCredentialsStillSucceed(t *testing.T) {
	store := newFakeStore()
	store.signErr = errors.New("no signer")
	s := newTestService(t, store)

	res, err := s.Upload(context.Background(), 1, "x", [][]byte{[]byte("a")})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if res.SignedURL != "" {
		t.Fatalf("expected empty signed url, got %q", res.SignedURL)
	}
}

func TestList_UserPrefixNewestFirst(t *testing.T) {
	store := newFakeStore()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	store.attrs = []*storage.ObjectAttrs{
		{Name: "exports/7/a.mp3", Size: 1, Created: base},
		{Name: "exports/7/b.mp3", Size: 2, Created: base.Add(time.Hour)},
		{Name: "exports/70/c.mp3", Size: 3, Created: base},
		{Name: "exports/8/d.mp3", Size: 4, Created: base},
	}
	s := newTestService(t, store)

	items, err := s.List(context.Background(), 7)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if store.lastQ.Prefix != "exports/7/" {
		t.Fatalf("unexpected prefix %q", store.lastQ.Prefix)
	}
	if len(items) != 2 || items[0].Name != "b.mp3" || items[1].Name != "a.mp3" {
		t.Fatalf("unexpected items %+v", items)
	}
	if items[0].SignedURL == "" {
		t.Fatalf("expected signed url")
	}
}

func TestList_IteratorError(t *testing.T) {
	store := newFakeStore()
	store.listErr = errors.New("denied")
	s := newTestService(t, store)

	if _, err := s.List(context.Background(), 7); err == nil {
		t.Fatalf("expected error")
	}
}

func TestClose(t *testing.T) {
	store := newFakeStore()
	s := newTestService(t, store)
	_ = s.Close()
	if !store.closed {
		t.Fatalf("expected client closed")
	}
}

// ---- http ----

type recordingLogService struct {
	entries []logs.SystemLog
}

func (r *recordingLogService) Log(entry logs.SystemLog, _ interface{}) error {
	r.entries = append(r.entries, entry)
	return nil
}

const testSecret = "export-secret"

func authHeader(t *testing.T, userID any) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID,
		"exp":     time.Now().Add(time.Hour).Unix(),
	})
	s, err := tok.SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return "Bearer " + s
}

func setupRouter(svc ExportServiceAPI, ls LogServicePort) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	RegisterRoutes(r, svc, ls, testSecret)
	return r
}

func doRequest(r http.Handler, method, path, auth, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestExportEndpoint_RequiresAuth(t *testing.T) {
	r := setupRouter(newTestService(t, newFakeStore()), nil)

	if w := doRequest(r, http.MethodPost, "/api/tts/export", "", `{}`); w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", w.Code)
	}
	if w := doRequest(r, http.MethodGet, "/api/tts/exports", "", ""); w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", w.Code)
	}
}

func TestExportEndpoint_UploadsAndAudits(t *testing.T) {
	store := newFakeStore()
	ls := &recordingLogService{}
	r := setupRouter(newTestService(t, store), ls)

	body, _ := json.Marshal(ExportRequest{
		Title:  "Chapter 1",
		Chunks: []string{base64.StdEncoding.EncodeToString([]byte("xy")), base64.StdEncoding.EncodeToString([]byte("z"))},
	})
	w := doRequest(r, http.MethodPost, "/api/tts/export", authHeader(t, 7), string(body))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body=%s", w.Code, w.Body.String())
	}

	var res ExportResult
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if res.Object != "exports/7/20260506T070809_chapter_1_id1.mp3" || res.Size != 3 {
		t.Fatalf("unexpected result %+v", res)
	}
	if string(store.objects[res.Object]) != "xyz" {
		t.Fatalf("unexpected object content %q", store.objects[res.Object])
	}

	if len(ls.entries) != 1 || ls.entries[0].Action != "EXPORT_AUDIO" || *ls.entries[0].UserID != 7 {
		t.Fatalf("unexpected audit entries %+v", ls.entries)
	}
}

func TestExportEndpoint_BadInput(t *testing.T) {
	r := setupRouter(newTestService(t, newFakeStore()), nil)
	auth := authHeader(t, 7)

	for name, body := range map[string]string{
		"bad json":   `{`,
		"no chunks":  `{"title":"x"}`,
		"bad base64": `{"chunks":["%%%"]}`,
	} {
		t.Run(name, func(t *testing.T) {
			if w := doRequest(r, http.MethodPost, "/api/tts/export", auth, body); w.Code != http.StatusBadRequest {
				t.Fatalf("expected 400 got %d body=%s", w.Code, w.Body.String())
			}
		})
	}
}

func TestExportEndpoint_StorageFailure(t *testing.T) {
	store := newFakeStore()
	store.writeErr = errors.New("unavailable")
	r := setupRouter(newTestService(t, store), nil)

	body := `{"chunks":["` + base64.StdEncoding.EncodeToString([]byte("a")) + `"]}`
	if w := doRequest(r, http.MethodPost, "/api/tts/export", authHeader(t, 7), body); w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 got %d", w.Code)
	}
}

func TestListEndpoint(t *testing.T) {
	store := newFakeStore()
	store.attrs = []*storage.ObjectAttrs{{Name: "exports/9/a.mp3", Size: 5, Created: time.Now()}}
	r := setupRouter(newTestService(t, store), nil)

	w := doRequest(r, http.MethodGet, "/api/tts/exports", authHeader(t, "9"), "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body=%s", w.Code, w.Body.String())
	}

	var resp struct {
		Data []ExportItem `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(resp.Data) != 1 || resp.Data[0].Object != "exports/9/a.mp3" {
		t.Fatalf("unexpected data %+v", resp.Data)
	}

	store.listErr = errors.New("denied")
	if w := doRequest(r, http.MethodGet, "/api/tts/exports", authHeader(t, "9"), ""); w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 got %d", w.Code)
	}
}
