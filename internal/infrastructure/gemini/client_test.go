package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"

	"plantify/internal/domain/entity"
)

const roseJSON = `{"name":"Rose","scientificName":"Rosa","family":"Rosaceae","description":"d","care":"c","funFacts":"f"}`

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := NewClient(context.Background(), Config{APIKey: "test-key", Endpoint: srv.URL})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestClient_IdentifySendsInstructionAndInlineData(t *testing.T) {
	var got struct {
		Contents []struct {
			Parts []struct {
				Text       string `json:"text"`
				InlineData *struct {
					Data     string `json:"data"`
					MimeType string `json:"mimeType"`
				} `json:"inlineData"`
			} `json:"parts"`
		} `json:"contents"`
	}
	var path, key string

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		key = r.URL.Query().Get("key")
		if key == "" {
			key = r.Header.Get("X-Goog-Api-Key")
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"` + strings.ReplaceAll(roseJSON, `"`, `\"`) + `"}]}}]}`))
	})

	payload := entity.NewEncodedPayload("image/png", []byte("png-bytes"))
	text, err := c.Identify(context.Background(), payload)
	require.NoError(t, err)
	require.Equal(t, roseJSON, text)

	require.True(t, strings.HasSuffix(path, "/models/"+DefaultModel+":generateContent"), path)
	require.Equal(t, "test-key", key)
	require.Len(t, got.Contents, 1)
	require.Len(t, got.Contents[0].Parts, 2)
	require.Equal(t, Instruction, got.Contents[0].Parts[0].Text)
	require.NotNil(t, got.Contents[0].Parts[1].InlineData)
	require.Equal(t, payload.Data(), got.Contents[0].Parts[1].InlineData.Data)
	require.Equal(t, "image/png", got.Contents[0].Parts[1].InlineData.MimeType)
}

func TestClient_MissingCredential(t *testing.T) {
	c, err := NewClient(context.Background(), Config{})
	require.NoError(t, err)

	require.ErrorIs(t, c.Ready(), entity.ErrCredentialMissing)
	_, err = c.Identify(context.Background(), entity.NewEncodedPayload("image/png", []byte{1}))
	require.ErrorIs(t, err, entity.ErrCredentialMissing)
}

func TestClient_ServiceErrorIsTransport(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"code":500,"message":"internal","status":"INTERNAL"}}`))
	})

	_, err := c.Identify(context.Background(), entity.NewEncodedPayload("image/jpeg", []byte{1, 2}))
	require.ErrorIs(t, err, entity.ErrTransport)

	var te *entity.TransportError
	require.ErrorAs(t, err, &te)
	require.Equal(t, http.StatusInternalServerError, te.StatusCode)
	require.Equal(t, int32(1), calls.Load())
}

func TestClient_BlockedPromptIsTransport(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"promptFeedback":{"blockReason":"SAFETY"}}`))
	})

	_, err := c.Identify(context.Background(), entity.NewEncodedPayload("image/jpeg", []byte{1}))
	require.ErrorIs(t, err, entity.ErrTransport)
	require.Contains(t, strings.ToLower(err.Error()), "safety")

	var te *entity.TransportError
	require.ErrorAs(t, err, &te)
	require.Equal(t, http.StatusOK, te.StatusCode)
}

func TestClient_NoCandidatesIsTransport(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{}`))
	})

	_, err := c.Identify(context.Background(), entity.NewEncodedPayload("image/jpeg", []byte{1}))
	require.ErrorIs(t, err, entity.ErrTransport)
}

func TestClient_ConnectionResetIsTransportWithoutKey(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		hj, ok := w.(http.Hijacker)
		if !ok {
			w.WriteHeader(http.StatusTeapot)
			return
		}
		if conn, _, err := hj.Hijack(); err == nil {
			_ = conn.Close()
		}
	})

	_, err := c.Identify(context.Background(), entity.NewEncodedPayload("image/jpeg", []byte{1}))
	require.ErrorIs(t, err, entity.ErrTransport)
	require.NotContains(t, err.Error(), "test-key")

	var te *entity.TransportError
	require.ErrorAs(t, err, &te)
	require.Zero(t, te.StatusCode)
}

func TestClient_CallerTimeoutIsTransport(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := c.Identify(ctx, entity.NewEncodedPayload("image/jpeg", []byte{1}))
	require.ErrorIs(t, err, entity.ErrTransport)
	require.NotContains(t, err.Error(), "test-key")
}

func TestTransportError_RedactsURL(t *testing.T) {
	inner := &url.Error{
		Op:  "Post",
		URL: "https://generativelanguage.googleapis.com/v1beta/models/x:generateContent?key=test-key",
		Err: io.ErrUnexpectedEOF,
	}

	err := transportError(inner)
	require.ErrorIs(t, err, entity.ErrTransport)
	require.ErrorIs(t, err, io.ErrUnexpectedEOF)
	require.NotContains(t, err.Error(), "test-key")
	require.Contains(t, err.Error(), "Post")
}

func TestTransportError_APIError(t *testing.T) {
	err := transportError(fmt.Errorf("call: %w", &googleapi.Error{Code: 429, Message: "quota"}))

	var te *entity.TransportError
	require.ErrorAs(t, err, &te)
	require.Equal(t, 429, te.StatusCode)
	require.Contains(t, err.Error(), "quota")
}

func TestClient_CloseWithoutCredential(t *testing.T) {
	c, err := NewClient(context.Background(), Config{})
	require.NoError(t, err)
	require.NoError(t, c.Close())
}
