package ai

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"maps"
	"net/http"
	"strings"

	json "github.com/goccy/go-json"
)

const (
	imagePreamble = `A chat between a curious human and an artificial intelligence assistant. The assistant gives helpful, detailed, and polite answers to the human's questions.
USER:`
	imageSuffix = `
ASSISTANT:`
)

type jsonmap map[string]any

// Sampling defaults of the llama.cpp server UI, minus the ones set per client.
var defaultparams = jsonmap{
	"n_probs":           0,
	"stop":              []string{"</s>", "USER:"},
	"repeat_last_n":     256,
	"repeat_penalty":    1.18,
	"top_k":             40,
	"top_p":             0.5,
	"typical_p":         1,
	"presence_penalty":  0,
	"frequency_penalty": 0,
	"mirostat":          0,
	"mirostat_tau":      5,
	"mirostat_eta":      0.1,
	"cache_prompt":      true,
}

type LlamaConfig struct {
	Server      string
	Seed        int
	MaxTokens   int
	Temperature float32
	HTTPClient  *http.Client
}

// LlamaClient calls the /completion endpoint of a llama.cpp server running a
// multimodal model.
type LlamaClient struct {
	srvAddr     string
	seed        int
	maxTokens   int
	temperature float32

	client *http.Client
}

// StatusError is a non-200 answer from the llama.cpp server.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("llama server status %d: %s", e.Code, e.Body)
}

var (
	_ VisionModel        = (*LlamaClient)(nil)
	_ InlinePlaceholders = (*LlamaClient)(nil)
)

func NewLlamaClient(cfg LlamaConfig) *LlamaClient {
	client := cfg.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	return &LlamaClient{
		srvAddr:     strings.TrimRight(cfg.Server, "/"),
		seed:        cfg.Seed,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		client:      client,
	}
}

func (l *LlamaClient) Name() string { return "llama" }

// Placeholder matches the ids sent in image_data.
func (l *LlamaClient) Placeholder(n int) string { return fmt.Sprintf("[img-%d]", n) }

func (l *LlamaClient) IsHealthy(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.srvAddr+"/health", nil)
	if err != nil {
		return false
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	return resp.StatusCode == http.StatusOK
}

func (l *LlamaClient) Describe(ctx context.Context, prompt string, images []EncodedImage) (string, error) {
	data := make([]jsonmap, 0, len(images))
	for i, img := range images {
		data = append(data, jsonmap{"data": img.Base64(), "id": i + 1})
	}

	return l.sendRequest(ctx, imagePreamble+prompt+imageSuffix, jsonmap{
		"image_data": data,
	})
}

func (l *LlamaClient) sendRequest(ctx context.Context, prompt string, keys jsonmap) (string, error) {
	data := maps.Clone(defaultparams)
	maps.Copy(data, keys)
	data["prompt"] = prompt
	data["stream"] = false
	data["seed"] = l.seed
	data["temperature"] = l.temperature
	if l.maxTokens > 0 {
		data["n_predict"] = l.maxTokens
	}

	buf := new(bytes.Buffer)
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(&data); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, l.srvAddr+"/completion", buf)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := l.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	var respbody struct {
		Content string `json:"content"`
		Stop    bool   `json:"stop"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&respbody); err != nil {
		return "", fmt.Errorf("decode completion: %w", err)
	}

	return strings.TrimLeft(respbody.Content, " "), nil
}
