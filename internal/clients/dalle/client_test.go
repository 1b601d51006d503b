package dalle

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/wnsghl6272/total-cooked/internal/domain"
)

type fakeMirror struct {
	puts int
	fail bool
}

func (m *fakeMirror) Put(_ context.Context, r io.Reader, hintName, mime string) (string, error) {
	m.puts++
	if m.fail {
		return "", errors.New("bucket unavailable")
	}
	io.Copy(io.Discard, r)
	return "https://cdn.example/" + hintName, nil
}

func newTestClient(srv *httptest.Server, mirror Mirror) *Client {
	c := New("test-key", srv.URL, mirror, log.New(io.Discard, "", 0))
	c.delay = 0
	c.sleep = func(context.Context, time.Duration) {}
	return c
}

// vendorHandler обслуживает и генерацию, и скачивание "картинки".
func vendorHandler(t *testing.T, srv **httptest.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/images/generations":
			var req generationRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				t.Fatalf("bad request body: %v", err)
			}
			if req.Model != "dall-e-3" || req.N != 1 || req.Size != "1024x1024" {
				t.Errorf("unexpected generation params: %+v", req)
			}
			fmt.Fprintf(w, `{"created": 1700000000, "data": [{"url": %q}]}`, (*srv).URL+"/raw/pic.png")
		case "/raw/pic.png":
			w.Write([]byte("png-bytes"))
		default:
			t.Errorf("unexpected path: %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}
}

func TestGenerateFoodImageMirrored(t *testing.T) {
	var srv *httptest.Server
	srv = httptest.NewServer(vendorHandler(t, &srv))
	defer srv.Close()

	mirror := &fakeMirror{}
	img, err := newTestClient(srv, mirror).GenerateFoodImage(context.Background(), "a cozy soup")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if img.ID == "" {
		t.Error("expected generated id")
	}
	if img.Prompt != "a cozy soup" || img.AltDescription != "a cozy soup" {
		t.Errorf("prompt fields not set: %+v", img)
	}
	if img.CreatedAt != "2023-11-14T22:13:20Z" {
		t.Errorf("unexpected created_at: %q", img.CreatedAt)
	}
	if mirror.puts != 1 {
		t.Errorf("expected 1 mirror upload, got %d", mirror.puts)
	}
	if img.URL != "https://cdn.example/"+img.ID+".png" {
		t.Errorf("expected mirrored url, got %q", img.URL)
	}
}

func TestGenerateFoodImageMirrorFailureKeepsVendorURL(t *testing.T) {
	var srv *httptest.Server
	srv = httptest.NewServer(vendorHandler(t, &srv))
	defer srv.Close()

	img, err := newTestClient(srv, &fakeMirror{fail: true}).GenerateFoodImage(context.Background(), "soup")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if img.URL != srv.URL+"/raw/pic.png" {
		t.Errorf("expected vendor url fallback, got %q", img.URL)
	}
}

func TestGenerateFoodImageNoMirror(t *testing.T) {
	var srv *httptest.Server
	srv = httptest.NewServer(vendorHandler(t, &srv))
	defer srv.Close()

	img, err := newTestClient(srv, nil).GenerateFoodImage(context.Background(), "soup")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if img.URL != srv.URL+"/raw/pic.png" {
		t.Errorf("expected vendor url, got %q", img.URL)
	}
}

func TestGenerateFoodImageVendorError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	_, err := newTestClient(srv, nil).GenerateFoodImage(context.Background(), "soup")
	var apiErr *domain.APIError
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusBadGateway {
		t.Fatalf("expected 502 APIError, got %v", err)
	}
}

func TestGenerateRecipeImagesSequential(t *testing.T) {
	var generations int
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/images/generations" {
			w.Write([]byte("png"))
			return
		}
		generations++
		fmt.Fprintf(w, `{"created": 1, "data": [{"url": %q}]}`, srv.URL+"/raw.png")
	}))
	defer srv.Close()

	images, err := newTestClient(srv, nil).GenerateRecipeImages(context.Background(), "pasta", 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(images) != 3 {
		t.Errorf("expected 3 images, got %d", len(images))
	}
	if generations != 3 {
		t.Errorf("expected 3 vendor calls, got %d", generations)
	}
}

func TestGenerateRecipeImagesPartialFailure(t *testing.T) {
	var calls int
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 2 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		fmt.Fprintf(w, `{"created": 1, "data": [{"url": %q}]}`, srv.URL+"/raw.png")
	}))
	defer srv.Close()

	// Часть слотов провалилась — отдаём то, что есть, без ошибки.
	images, err := newTestClient(srv, nil).GenerateRecipeImages(context.Background(), "pasta", 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(images) != 2 {
		t.Errorf("expected 2 surviving images, got %d", len(images))
	}
}

func TestGenerateRecipeImagesAllFailed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := newTestClient(srv, nil).GenerateRecipeImages(context.Background(), "pasta", 2)
	if err == nil {
		t.Fatal("expected error when every generation failed")
	}
}
