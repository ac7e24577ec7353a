package ollama

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/MoguchiyDuh/televito/internal/core/domain"
	"github.com/MoguchiyDuh/televito/internal/core/port"
)

const validReply = `{
	"location": "Hercegovačka, Belgrade Waterfront, Savski venac",
	"status": "2024-12-06",
	"price": 1400.0,
	"duration": 12,
	"is_new": true,
	"rooms": 2.0,
	"room_description": null,
	"area": 55.0,
	"floor": 15,
	"floors_in_building": 23,
	"pets_allowed": false,
	"parking": "на участке"
}`

type scriptedModel struct {
	replies  []string
	errs     []error
	calls    int
	messages [][]port.ChatMessage
}

func (m *scriptedModel) Chat(ctx context.Context, messages []port.ChatMessage, _ port.SamplingOptions) (string, error) {
	snapshot := make([]port.ChatMessage, len(messages))
	copy(snapshot, messages)
	m.messages = append(m.messages, snapshot)

	i := m.calls
	m.calls++
	if i < len(m.errs) && m.errs[i] != nil {
		return "", m.errs[i]
	}
	if i < len(m.replies) {
		return m.replies[i], nil
	}
	return "", errors.New("no scripted reply")
}

type memoryAudit struct {
	titles []string
}

func (a *memoryAudit) Store(title, _ string) error {
	a.titles = append(a.titles, title)
	return nil
}

func newTestExtractor(t *testing.T, model port.ChatModelPort, audit port.AuditSinkPort) *FallbackExtractor {
	t.Helper()
	e, err := NewFallbackExtractor(model, audit, port.SamplingOptions{Temperature: 0.7, TopP: 0.9})
	if err != nil {
		t.Fatalf("NewFallbackExtractor returned error: %v", err)
	}
	return e
}

func TestFallbackExtractFirstAttempt(t *testing.T) {
	post := time.Date(2024, time.November, 1, 12, 0, 0, 0, time.UTC)
	model := &scriptedModel{replies: []string{"Here is the JSON you asked for:\n" + validReply}}
	audit := &memoryAudit{}

	rec, err := newTestExtractor(t, model, audit).Extract(context.Background(), "some listing", post)
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}
	if rec.Location != "Hercegovačka, Belgrade Waterfront, Savski venac" {
		t.Errorf("location = %q", rec.Location)
	}
	wantStatus := time.Date(2024, time.December, 6, 0, 0, 0, 0, time.UTC)
	if rec.Status == nil || !rec.Status.Equal(wantStatus) {
		t.Errorf("status = %v, want %v", rec.Status, wantStatus)
	}
	if rec.Price != 1400.0 || !rec.IsNew || rec.PetsAllowed {
		t.Errorf("unexpected scalar fields: %+v", rec)
	}
	if rec.Floor == nil || *rec.Floor != 15 || rec.FloorsInBuilding == nil || *rec.FloorsInBuilding != 23 {
		t.Errorf("floor = %v/%v", rec.Floor, rec.FloorsInBuilding)
	}
	if !rec.PublicationTime.Equal(post) {
		t.Errorf("publication time = %v, want %v", rec.PublicationTime, post)
	}
	if model.calls != 1 {
		t.Errorf("model called %d times, want 1", model.calls)
	}
}

func TestFallbackExtractRetriesWithFeedback(t *testing.T) {
	post := time.Date(2024, time.November, 1, 0, 0, 0, 0, time.UTC)
	model := &scriptedModel{replies: []string{
		`{"location": "x", "status": "2024-12-06"}`,
		validReply,
	}}
	audit := &memoryAudit{}

	rec, err := newTestExtractor(t, model, audit).Extract(context.Background(), "some listing", post)
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}
	if rec == nil || rec.Price != 1400.0 {
		t.Fatalf("unexpected record: %+v", rec)
	}
	if model.calls != 2 {
		t.Fatalf("model called %d times, want 2", model.calls)
	}

	second := model.messages[1]
	last := second[len(second)-1]
	if last.Role != "user" || !strings.Contains(last.Content, "Cannot parse your response due to the error") {
		t.Errorf("feedback message not appended, got %+v", last)
	}
	if len(second) != len(model.messages[0])+1 {
		t.Errorf("history grew by %d messages, want 1", len(second)-len(model.messages[0]))
	}
}

func TestFallbackExtractExhausted(t *testing.T) {
	post := time.Date(2024, time.November, 1, 0, 0, 0, 0, time.UTC)
	model := &scriptedModel{replies: []string{"no json here", "still no json", "{broken"}}
	audit := &memoryAudit{}

	_, err := newTestExtractor(t, model, audit).Extract(context.Background(), "some listing", post)
	if !errors.Is(err, domain.ErrModelExhausted) {
		t.Fatalf("Extract() error = %v, want ErrModelExhausted", err)
	}
	if model.calls != 3 {
		t.Errorf("model called %d times, want 3", model.calls)
	}

	var sawFinal bool
	for _, title := range audit.titles {
		if title == "EXTRACTION FAILED" {
			sawFinal = true
		}
	}
	if !sawFinal {
		t.Errorf("final failure not audited, titles = %v", audit.titles)
	}
}

func TestFallbackExtractTransportErrorsSpendBudget(t *testing.T) {
	post := time.Date(2024, time.November, 1, 0, 0, 0, 0, time.UTC)
	model := &scriptedModel{
		errs:    []error{errors.New("connection refused"), errors.New("connection refused"), errors.New("connection refused")},
		replies: []string{"", "", ""},
	}
	audit := &memoryAudit{}

	_, err := newTestExtractor(t, model, audit).Extract(context.Background(), "some listing", post)
	if !errors.Is(err, domain.ErrModelExhausted) {
		t.Fatalf("Extract() error = %v, want ErrModelExhausted", err)
	}
	if model.calls != 3 {
		t.Errorf("model called %d times, want 3", model.calls)
	}
}

func TestFallbackExtractContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	model := &scriptedModel{replies: []string{validReply}}
	_, err := newTestExtractor(t, model, &memoryAudit{}).Extract(ctx, "text", time.Now())
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Extract() error = %v, want context.Canceled", err)
	}
}

func TestParseReplyRejections(t *testing.T) {
	post := time.Date(2024, time.November, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		raw  string
	}{
		{"no JSON object", "sorry, I cannot help with that"},
		{"unbalanced object", `{"location": "x"`},
		{"missing fields", `{"location": "x", "status": "2024-12-06"}`},
		{
			"extra field",
			strings.Replace(validReply, `"parking": "на участке"`, `"parking": "на участке", "extra": 1`, 1),
		},
		{
			"status is not a date",
			strings.Replace(validReply, `"2024-12-06"`, `"soon"`, 1),
		},
		{
			"status is null",
			strings.Replace(validReply, `"2024-12-06"`, `null`, 1),
		},
		{
			"wrong type for floor",
			strings.Replace(validReply, `"floor": 15`, `"floor": "15"`, 1),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := parseReply(tt.raw, post); err == nil {
				t.Errorf("parseReply accepted %q", tt.raw)
			}
		})
	}
}

func TestParseReplyExtractsEmbeddedObject(t *testing.T) {
	post := time.Date(2024, time.November, 1, 0, 0, 0, 0, time.UTC)
	raw := "Sure! Here is the result:\n```json\n" + validReply + "\n```\nLet me know if you need more."

	rec, err := parseReply(raw, post)
	if err != nil {
		t.Fatalf("parseReply returned error: %v", err)
	}
	if rec.Area == nil || *rec.Area != 55.0 {
		t.Errorf("area = %v, want 55.0", rec.Area)
	}
}
