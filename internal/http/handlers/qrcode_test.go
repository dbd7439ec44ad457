package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dineqr/menuhub/internal/http/handlers"
	"github.com/dineqr/menuhub/internal/http/middlewares"
	"github.com/dineqr/menuhub/internal/repo/memory"
	"github.com/gin-gonic/gin"
)

var pngMagic = []byte{0x89, 'P', 'N', 'G'}

func TestGenerateQRCode(t *testing.T) {
	repo := memory.NewRestaurantsRepo()
	rest := seedRestaurant(t, repo, false) // drafts can generate too

	h := handlers.NewQRCodeHandler(repo, testBaseURL)
	r := withRestaurant(rest, http.MethodPost, "/qr/restaurants/:id", h.Generate)

	req := httptest.NewRequest(http.MethodPost, "/qr/restaurants/"+rest.ID, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, body=%s", w.Code, w.Body.String())
	}

	var resp struct {
		URL         string `json:"url"`
		GeneratedAt string `json:"generatedAt"`
	}

	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}

	want := testBaseURL + "/menu/" + rest.Slug
	if resp.URL != want {
		t.Fatalf("got encoded url %q, want %q", resp.URL, want)
	}

	if resp.GeneratedAt == "" {
		t.Fatal("expected a generation timestamp")
	}

	png, err := repo.GetQRPNG(context.Background(), rest.ID)
	if err != nil {
		t.Fatalf("load stored png: %v", err)
	}

	if !bytes.HasPrefix(png, pngMagic) {
		t.Fatal("stored artifact is not a PNG")
	}
}

func TestGenerateQRCodeOptions(t *testing.T) {
	repo := memory.NewRestaurantsRepo()
	rest := seedRestaurant(t, repo, true)

	h := handlers.NewQRCodeHandler(repo, testBaseURL)
	r := withRestaurant(rest, http.MethodPost, "/qr/restaurants/:id", h.Generate)

	tests := []struct {
		name           string
		body           string
		wantStatusCode int
	}{
		{name: "custom_size", body: `{"size": 512, "errorCorrection": "high"}`, wantStatusCode: http.StatusOK},
		{name: "size_too_small", body: `{"size": 16}`, wantStatusCode: http.StatusBadRequest},
		{name: "size_too_large", body: `{"size": 99999}`, wantStatusCode: http.StatusBadRequest},
		{name: "bad_level", body: `{"errorCorrection": "ultra"}`, wantStatusCode: http.StatusBadRequest},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/qr/restaurants/"+rest.ID, bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}
		})
	}
}

// Regeneration overwrites the artifact but never resets how many times
// the old code was scanned.
func TestRegenerateKeepsScanCount(t *testing.T) {
	repo := memory.NewRestaurantsRepo()
	rest := seedRestaurant(t, repo, true)

	h := handlers.NewQRCodeHandler(repo, testBaseURL)
	r := withRestaurant(rest, http.MethodPost, "/qr/restaurants/:id", h.Generate)

	generate := func() {
		req := httptest.NewRequest(http.MethodPost, "/qr/restaurants/"+rest.ID, nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("got status %d, body=%s", w.Code, w.Body.String())
		}
	}

	generate()

	for i := 0; i < 3; i++ {
		if _, err := repo.RecordScan(context.Background(), rest.Slug); err != nil {
			t.Fatalf("record scan: %v", err)
		}
	}

	generate()

	got, err := repo.GetPublicBySlug(context.Background(), rest.Slug)
	if err != nil {
		t.Fatalf("reload restaurant: %v", err)
	}

	if got.QRCode.ScanCount != 3 {
		t.Fatalf("got scan count %d after regeneration, want 3", got.QRCode.ScanCount)
	}
}

func TestGetQRCode(t *testing.T) {
	repo := memory.NewRestaurantsRepo()
	rest := seedRestaurant(t, repo, true)

	h := handlers.NewQRCodeHandler(repo, testBaseURL)

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(string(middlewares.CtxRestaurant), rest)
	})
	r.POST("/qr/restaurants/:id", h.Generate)
	r.GET("/qr/restaurants/:id", h.Get)

	// nothing generated yet
	req := httptest.NewRequest(http.MethodGet, "/qr/restaurants/"+rest.ID, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("got status %d, want 404 before generation", w.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/qr/restaurants/"+rest.ID, nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("generate: got status %d, body=%s", w.Code, w.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/qr/restaurants/"+rest.ID, nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, body=%s", w.Code, w.Body.String())
	}

	if ct := w.Header().Get("Content-Type"); ct != "image/png" {
		t.Fatalf("got content type %q, want image/png", ct)
	}

	if !bytes.HasPrefix(w.Body.Bytes(), pngMagic) {
		t.Fatal("response body is not a PNG")
	}
}
