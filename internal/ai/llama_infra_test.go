package ai

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLlamaDescribe(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/completion", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"content":"  a red square","stop":true}`))
	}))
	defer srv.Close()

	l := NewLlamaClient(LlamaConfig{Server: srv.URL + "/", Seed: 7, MaxTokens: 1000})
	reply, err := l.Describe(context.Background(), "[img-1]\n[img-2]\nWhat is this?", []EncodedImage{
		{MimeType: "image/png", Data: []byte{1, 2, 3}},
		{MimeType: "image/png", Data: []byte{4, 5, 6}},
	})
	require.NoError(t, err)
	assert.Equal(t, "a red square", reply)

	prompt := got["prompt"].(string)
	assert.True(t, strings.HasPrefix(prompt, imagePreamble))
	assert.True(t, strings.HasSuffix(prompt, imageSuffix))
	assert.Contains(t, prompt, "[img-1]\n[img-2]\nWhat is this?")

	assert.Equal(t, false, got["stream"])
	assert.EqualValues(t, 7, got["seed"])
	assert.EqualValues(t, 1000, got["n_predict"])
	assert.EqualValues(t, 0, got["temperature"])

	data := got["image_data"].([]any)
	require.Len(t, data, 2)
	first := data[0].(map[string]any)
	assert.Equal(t, "AQID", first["data"])
	assert.EqualValues(t, 1, first["id"])
	assert.EqualValues(t, 2, data[1].(map[string]any)["id"])
}

func TestLlamaStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "loading model", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	l := NewLlamaClient(LlamaConfig{Server: srv.URL})
	_, err := l.Describe(context.Background(), "x", nil)

	var st *StatusError
	require.ErrorAs(t, err, &st)
	assert.Equal(t, http.StatusServiceUnavailable, st.Code)
	assert.Equal(t, "loading model", st.Body)
	assert.Equal(t, KindUpstream, ClassifyError(err))
}

func TestLlamaHealth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/health" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(`{"status":"ok"}`))
	}))

	l := NewLlamaClient(LlamaConfig{Server: srv.URL})
	assert.True(t, l.IsHealthy(context.Background()))
	assert.Equal(t, "[img-3]", l.Placeholder(3))

	srv.Close()
	assert.False(t, l.IsHealthy(context.Background()))
}
