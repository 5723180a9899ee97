package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-homereel/handlers"
	"go-homereel/pipeline"
	"go-homereel/routes"
	"go-homereel/types"
)

func testRouter() (*gin.Engine, *handlers.SessionStore) {
	gin.SetMode(gin.TestMode)
	sessions := handlers.NewSessionStore(nil)
	return routes.SetupRouter(&pipeline.Pipeline{}, nil, sessions), sessions
}

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{B: 0x90, A: 0xFF})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func multipartUpload(t *testing.T, names []string, payload []byte, role string) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for _, name := range names {
		fw, err := mw.CreateFormFile("photos", name)
		require.NoError(t, err)
		_, err = fw.Write(payload)
		require.NoError(t, err)
	}
	if role != "" {
		require.NoError(t, mw.WriteField("role", role))
	}
	require.NoError(t, mw.Close())
	return &body, mw.FormDataContentType()
}

func TestUploadPhotos(t *testing.T) {
	router, sessions := testRouter()

	body, contentType := multipartUpload(t, []string{"kitchen.png", "garden.png"}, encodePNG(t, 640, 480), "exterior")
	req := httptest.NewRequest(http.MethodPost, "/api/homereel/uploads?session=listing-1", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Session string   `json:"session"`
		IDs     []string `json:"ids"`
		Count   int      `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "listing-1", resp.Session)
	assert.Len(t, resp.IDs, 2)
	assert.Equal(t, 2, resp.Count)

	sess := sessions.GetOrCreate("listing-1")
	require.Equal(t, 2, sess.Media.Len())
	assert.Equal(t, types.RoleExterior, sess.Media.List()[0].Role)
}

func TestUploadRejectsGarbage(t *testing.T) {
	router, _ := testRouter()

	body, contentType := multipartUpload(t, []string{"junk.png"}, []byte("not an image"), "")
	req := httptest.NewRequest(http.MethodPost, "/api/homereel/uploads?session=listing-2", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestSetBoundary(t *testing.T) {
	router, sessions := testRouter()

	ring := []types.Geocoordinate{
		{Lat: 37.34, Lng: -122.04},
		{Lat: 37.34, Lng: -122.03},
		{Lat: 37.33, Lng: -122.03},
		{Lat: 37.33, Lng: -122.04},
	}
	payload, _ := json.Marshal(gin.H{"session": "listing-3", "ring": ring})
	req := httptest.NewRequest(http.MethodPost, "/api/homereel/boundary", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	poly, ok := sessions.GetOrCreate("listing-3").Boundary.Current()
	require.True(t, ok)
	assert.True(t, poly.Manual)
	assert.Equal(t, 4, poly.VertexCount())
}

func TestSetBoundaryRejectsDegenerateRing(t *testing.T) {
	router, _ := testRouter()

	payload, _ := json.Marshal(gin.H{
		"session": "listing-4",
		"ring": []types.Geocoordinate{
			{Lat: 37.34, Lng: -122.04},
			{Lat: 37.34, Lng: -122.03},
		},
	})
	req := httptest.NewRequest(http.MethodPost, "/api/homereel/boundary", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestReorderPhotos(t *testing.T) {
	router, sessions := testRouter()
	sess := sessions.GetOrCreate("listing-5")
	for _, id := range []string{"a", "b", "c"} {
		sess.Media.Add(types.ImageAsset{ID: id, Source: types.SourceUser, Pixels: []byte("x"), Width: 640, Height: 480}, types.RoleInterior)
	}

	payload, _ := json.Marshal(gin.H{"session": "listing-5", "ids": []string{"c", "a", "b"}})
	req := httptest.NewRequest(http.MethodPost, "/api/homereel/reorder", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assets := sess.Media.List()
	assert.Equal(t, "c", assets[0].ID)

	// Not a permutation: rejected and order untouched.
	payload, _ = json.Marshal(gin.H{"session": "listing-5", "ids": []string{"a", "a", "b"}})
	req = httptest.NewRequest(http.MethodPost, "/api/homereel/reorder", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "c", sess.Media.List()[0].ID)
}

func TestPreviewTimeline(t *testing.T) {
	router, sessions := testRouter()
	sess := sessions.GetOrCreate("listing-6")
	for i := 0; i < 2; i++ {
		sess.Media.Add(types.ImageAsset{
			ID:     fmt.Sprintf("photo-%d", i),
			Source: types.SourceUser,
			Pixels: []byte("x"),
			Width:  640, Height: 480,
		}, types.RoleExterior)
	}

	payload, _ := json.Marshal(gin.H{
		"session":  "listing-6",
		"lines":    []string{"Welcome home.", "Call us today for a private tour of the grounds."},
		"duration": 24.0,
		"preset":   "luxury_residence",
		"address":  "12 Ocean Drive",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/homereel/timeline", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Timeline types.Timeline `json:"timeline"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Timeline.Primary, 2)
	assert.InDelta(t, 24.0, resp.Timeline.TotalDuration, 1e-9)
	assert.Equal(t, "luxury_residence", resp.Timeline.Preset)
}
