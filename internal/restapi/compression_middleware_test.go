package restapi

import (
	"bytes"
	"compress/gzip"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompressionMiddleware(t *testing.T) {
	// Create a test handler that returns a large response
	testHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		largeResponse := strings.Repeat(`{"test": "data"}`, 1000)
		_, _ = w.Write([]byte(largeResponse))
	})

	t.Run("compresses response when gzip accepted", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/test", nil)
		req.Header.Set("Accept-Encoding", "gzip")

		recorder := httptest.NewRecorder()

		handler := CompressionMiddleware(testHandler)
		handler.ServeHTTP(recorder, req)

		assert.Equal(t, http.StatusOK, recorder.Code)
		assert.Equal(t, "gzip", recorder.Header().Get("Content-Encoding"))

		reader, err := gzip.NewReader(bytes.NewReader(recorder.Body.Bytes()))
		require.NoError(t, err)
		defer func() { _ = reader.Close() }()

		decompressed, err := io.ReadAll(reader)
		require.NoError(t, err)

		expected := strings.Repeat(`{"test": "data"}`, 1000)
		assert.Equal(t, expected, string(decompressed))

		// Verify compression actually happened (compressed should be smaller)
		assert.Less(t, recorder.Body.Len(), len(expected))
	})

	t.Run("does not compress when gzip not accepted", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/test", nil)

		recorder := httptest.NewRecorder()

		handler := CompressionMiddleware(testHandler)
		handler.ServeHTTP(recorder, req)

		assert.Equal(t, http.StatusOK, recorder.Code)
		assert.Empty(t, recorder.Header().Get("Content-Encoding"))

		expected := strings.Repeat(`{"test": "data"}`, 1000)
		assert.Equal(t, expected, recorder.Body.String())
	})

	t.Run("handles empty responses", func(t *testing.T) {
		emptyHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		})

		req := httptest.NewRequest("GET", "/test", nil)
		req.Header.Set("Accept-Encoding", "gzip")

		recorder := httptest.NewRecorder()

		handler := CompressionMiddleware(emptyHandler)
		handler.ServeHTTP(recorder, req)

		assert.Equal(t, http.StatusNoContent, recorder.Code)
		assert.Empty(t, recorder.Body.String())
	})

	t.Run("preserves content-type header", func(t *testing.T) {
		jsonHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			largeJSON := strings.Repeat(`{"message": "test data"}`, 100)
			_, _ = w.Write([]byte(largeJSON))
		})

		req := httptest.NewRequest("GET", "/test", nil)
		req.Header.Set("Accept-Encoding", "gzip")

		recorder := httptest.NewRecorder()

		handler := CompressionMiddleware(jsonHandler)
		handler.ServeHTTP(recorder, req)

		assert.Equal(t, "application/json", recorder.Header().Get("Content-Type"))
		assert.Equal(t, "gzip", recorder.Header().Get("Content-Encoding"))
	})
}

func TestCompressionMiddlewareIntegration(t *testing.T) {
	api := createTestApi(t)

	mux := http.NewServeMux()
	api.SetRoutes(mux)
	server := httptest.NewServer(CompressionMiddleware(mux))
	t.Cleanup(server.Close)

	client := &http.Client{}
	req, err := http.NewRequest("GET", server.URL+"/api/v1/datasets/case1.json?key=TEST", nil)
	require.NoError(t, err)
	req.Header.Set("Accept-Encoding", "gzip")

	resp, err := client.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	// gzhttp may skip compression below the minimum size; either way the
	// payload must decode to the same envelope.
	var body []byte
	if resp.Header.Get("Content-Encoding") == "gzip" {
		reader, err := gzip.NewReader(resp.Body)
		require.NoError(t, err)
		defer func() { _ = reader.Close() }()
		body, err = io.ReadAll(reader)
		require.NoError(t, err)
	} else {
		body, err = io.ReadAll(resp.Body)
		require.NoError(t, err)
	}
	assert.Contains(t, string(body), `"code":200`)
}

func TestCompressionConfig(t *testing.T) {
	t.Run("default config has sensible values", func(t *testing.T) {
		config := DefaultCompressionConfig()
		assert.Equal(t, 1024, config.MinSize)
		assert.Equal(t, 6, config.Level)
	})

	t.Run("custom config is applied", func(t *testing.T) {
		config := CompressionConfig{
			MinSize: 2048,
			Level:   9,
		}

		testHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			largeResponse := strings.Repeat(`{"test": "data"}`, 500)
			_, _ = w.Write([]byte(largeResponse))
		})

		req := httptest.NewRequest("GET", "/test", nil)
		req.Header.Set("Accept-Encoding", "gzip")

		recorder := httptest.NewRecorder()

		middleware := NewCompressionMiddleware(config)
		handler := middleware(testHandler)
		handler.ServeHTTP(recorder, req)

		assert.Equal(t, http.StatusOK, recorder.Code)
		assert.Equal(t, "application/json", recorder.Header().Get("Content-Type"))
	})
}
