package ollama

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/MoguchiyDuh/televito/internal/core/port"
)

// Client реализует ChatModelPort поверх chat API сервиса Ollama.
// Ответ приходит потоком JSON-фрагментов, по одному на строку;
// фрагменты склеиваются в порядке прихода.
type Client struct {
	apiURL     string
	model      string
	httpClient *http.Client
}

// NewClient создает клиент генеративной модели.
func NewClient(apiURL, model string) (*Client, error) {
	if apiURL == "" {
		return nil, fmt.Errorf("ollama api url cannot be empty")
	}
	if model == "" {
		return nil, fmt.Errorf("model name cannot be empty")
	}
	return &Client{
		apiURL: apiURL,
		model:  model,
		httpClient: &http.Client{
			Timeout: 5 * time.Minute,
		},
	}, nil
}

type chatRequest struct {
	Model    string               `json:"model"`
	Messages []port.ChatMessage   `json:"messages"`
	Options  port.SamplingOptions `json:"options"`
}

type chatFragment struct {
	Message struct {
		Content string `json:"content"`
	} `json:"message"`
}

// Chat отправляет диалог модели и собирает потоковый ответ в один текст.
func (c *Client) Chat(ctx context.Context, messages []port.ChatMessage, opts port.SamplingOptions) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model:    c.model,
		Messages: messages,
		Options:  opts,
	})
	if err != nil {
		return "", fmt.Errorf("marshaling chat request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		errBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("model API error (status %d): %s", resp.StatusCode, string(errBody))
	}

	var sb strings.Builder
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var fragment chatFragment
		if err := json.Unmarshal(line, &fragment); err != nil {
			return "", fmt.Errorf("parsing stream fragment: %w", err)
		}
		sb.WriteString(fragment.Message.Content)
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("reading stream: %w", err)
	}

	return sb.String(), nil
}
