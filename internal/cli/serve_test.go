package cli

import (
	"bytes"
	"encoding/json"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/fourup/pkg/pipeline"
)

func newTestServer(t *testing.T) *server {
	t.Helper()
	quiet := log.New(io.Discard)
	return &server{
		runner: pipeline.NewRunner(nil, quiet),
		base: pipeline.Options{
			TotalWidth: 196,
			Padding:    2,
			Seed:       7,
			Logger:     quiet,
		},
	}
}

// multipartImages builds a multipart body with one "images" part per size.
func multipartImages(t *testing.T, sizes [][2]int) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for i, wh := range sizes {
		part, err := mw.CreateFormFile("images", "img.png")
		if err != nil {
			t.Fatalf("create part %d: %v", i, err)
		}
		img := image.NewNRGBA(image.Rect(0, 0, wh[0], wh[1]))
		if err := png.Encode(part, img); err != nil {
			t.Fatalf("encode part %d: %v", i, err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return &body, mw.FormDataContentType()
}

func TestHandleHealth(t *testing.T) {
	srv := httptest.NewServer(newTestServer(t).routes())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}

	var payload map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if payload["status"] != "ok" {
		t.Errorf("payload = %v", payload)
	}
}

func TestHandleCollage(t *testing.T) {
	srv := httptest.NewServer(newTestServer(t).routes())
	defer srv.Close()

	body, contentType := multipartImages(t, [][2]int{
		{90, 100}, {100, 100}, {110, 100}, {120, 100},
	})
	resp, err := http.Post(srv.URL+"/collage?width=196&padding=2", contentType, body)
	if err != nil {
		t.Fatalf("POST /collage: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if got := resp.Header.Get("Content-Type"); got != "image/jpeg" {
		t.Errorf("content type = %q", got)
	}
	if resp.Header.Get("X-Arrangement") == "" {
		t.Error("missing X-Arrangement header")
	}

	cfg, err := jpeg.DecodeConfig(resp.Body)
	if err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if cfg.Width != 196 {
		t.Errorf("collage width = %d, want 196", cfg.Width)
	}
}

func TestHandleCollageTooFewImages(t *testing.T) {
	srv := httptest.NewServer(newTestServer(t).routes())
	defer srv.Close()

	body, contentType := multipartImages(t, [][2]int{{90, 100}, {100, 100}})
	resp, err := http.Post(srv.URL+"/collage", contentType, body)
	if err != nil {
		t.Fatalf("POST /collage: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
	var payload map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if payload["code"] != "INSUFFICIENT_IMAGES" {
		t.Errorf("code = %q, want INSUFFICIENT_IMAGES", payload["code"])
	}
}

func TestHandleCollageNoImagesField(t *testing.T) {
	srv := httptest.NewServer(newTestServer(t).routes())
	defer srv.Close()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	mw.Close()

	resp, err := http.Post(srv.URL+"/collage", mw.FormDataContentType(), &body)
	if err != nil {
		t.Fatalf("POST /collage: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestHandleCollageBadQueryParam(t *testing.T) {
	srv := httptest.NewServer(newTestServer(t).routes())
	defer srv.Close()

	body, contentType := multipartImages(t, [][2]int{
		{90, 100}, {100, 100}, {110, 100}, {120, 100},
	})
	resp, err := http.Post(srv.URL+"/collage?width=huge", contentType, body)
	if err != nil {
		t.Fatalf("POST /collage: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}
