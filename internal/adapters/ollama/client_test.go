package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/MoguchiyDuh/televito/internal/core/port"
)

func TestClientChatConcatenatesStream(t *testing.T) {
	var gotBody map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decoding request body: %v", err)
		}
		w.Write([]byte(`{"message":{"role":"assistant","content":"{\"loc"}}` + "\n"))
		w.Write([]byte(`{"message":{"role":"assistant","content":"ation\": null}"}}` + "\n"))
		w.Write([]byte(`{"done":true}` + "\n"))
	}))
	defer server.Close()

	client, err := NewClient(server.URL, "llama3.1")
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}

	messages := []port.ChatMessage{{Role: "user", Content: "hello"}}
	opts := port.SamplingOptions{Temperature: 0.7, TopP: 0.9}
	reply, err := client.Chat(context.Background(), messages, opts)
	if err != nil {
		t.Fatalf("Chat returned error: %v", err)
	}
	if reply != `{"location": null}` {
		t.Errorf("reply = %q", reply)
	}

	if gotBody["model"] != "llama3.1" {
		t.Errorf("request model = %v", gotBody["model"])
	}
	options, ok := gotBody["options"].(map[string]interface{})
	if !ok || options["temperature"] != 0.7 || options["top_p"] != 0.9 {
		t.Errorf("request options = %v", gotBody["options"])
	}
}

func TestClientChatErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"model not found"}`, http.StatusNotFound)
	}))
	defer server.Close()

	client, err := NewClient(server.URL, "missing")
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}

	_, err = client.Chat(context.Background(), nil, port.SamplingOptions{})
	if err == nil {
		t.Fatal("Chat succeeded, want error")
	}
	if !strings.Contains(err.Error(), "404") {
		t.Errorf("error = %v, want status code mentioned", err)
	}
}

func TestNewClientValidation(t *testing.T) {
	if _, err := NewClient("", "model"); err == nil {
		t.Error("empty url accepted")
	}
	if _, err := NewClient("http://localhost:11434/api/chat", ""); err == nil {
		t.Error("empty model accepted")
	}
}
