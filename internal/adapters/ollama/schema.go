package ollama

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/MoguchiyDuh/televito/internal/core/domain"
)

// replySchema описывает единственно допустимую форму ответа модели:
// ровно двенадцать известных полей, лишние поля запрещены.
const replySchema = `{
	"$schema": "https://json-schema.org/draft/2020-12/schema",
	"type": "object",
	"additionalProperties": false,
	"required": [
		"location", "status", "price", "duration", "is_new", "rooms",
		"room_description", "area", "floor", "floors_in_building",
		"pets_allowed", "parking"
	],
	"properties": {
		"location":           {"type": ["string", "null"]},
		"status":             {"type": "string"},
		"price":              {"type": ["number", "null"]},
		"duration":           {"type": ["integer", "null"]},
		"is_new":             {"type": ["boolean", "null"]},
		"rooms":              {"type": ["number", "null"]},
		"room_description":   {"type": ["string", "null"]},
		"area":               {"type": ["number", "null"]},
		"floor":              {"type": ["integer", "null"]},
		"floors_in_building": {"type": ["integer", "null"]},
		"pets_allowed":       {"type": ["boolean", "null"]},
		"parking":            {"type": ["string", "null"]}
	}
}`

var compiledReplySchema = jsonschema.MustCompileString("listing_reply.json", replySchema)

// modelReply — типизированный ответ модели после проверки схемой.
type modelReply struct {
	Location         *string  `json:"location"`
	Status           string   `json:"status"`
	Price            *float64 `json:"price"`
	Duration         *int     `json:"duration"`
	IsNew            *bool    `json:"is_new"`
	Rooms            *float64 `json:"rooms"`
	RoomDescription  *string  `json:"room_description"`
	Area             *float64 `json:"area"`
	Floor            *int     `json:"floor"`
	FloorsInBuilding *int     `json:"floors_in_building"`
	PetsAllowed      *bool    `json:"pets_allowed"`
	Parking          *string  `json:"parking"`
}

var statusLayouts = []string{"2006-01-02", "2006-01-02T15:04:05", time.RFC3339}

// parseReply вырезает из ответа модели первый JSON-объект, прогоняет его
// через схему и собирает запись объявления. Любое расхождение с ожидаемой
// формой возвращается как SchemaValidationError, чтобы текст ошибки можно
// было скормить модели обратно.
func parseReply(raw string, postTime time.Time) (*domain.ListingRecord, error) {
	payload, err := firstJSONObject(raw)
	if err != nil {
		return nil, &domain.SchemaValidationError{Reason: err.Error()}
	}

	var generic interface{}
	if err := json.Unmarshal([]byte(payload), &generic); err != nil {
		return nil, &domain.SchemaValidationError{Reason: fmt.Sprintf("invalid JSON: %v", err)}
	}
	if err := compiledReplySchema.Validate(generic); err != nil {
		return nil, &domain.SchemaValidationError{Reason: err.Error()}
	}

	var reply modelReply
	if err := json.Unmarshal([]byte(payload), &reply); err != nil {
		return nil, &domain.SchemaValidationError{Reason: fmt.Sprintf("decoding reply: %v", err)}
	}

	status, err := parseStatusDate(reply.Status)
	if err != nil {
		return nil, &domain.SchemaValidationError{
			Reason: fmt.Sprintf("'status' must be a date in format 'YYYY-MM-DD', got %q", reply.Status),
		}
	}

	rec := &domain.ListingRecord{
		Status:           &status,
		Duration:         reply.Duration,
		Rooms:            reply.Rooms,
		RoomDescription:  reply.RoomDescription,
		Area:             reply.Area,
		Floor:            reply.Floor,
		FloorsInBuilding: reply.FloorsInBuilding,
		Parking:          reply.Parking,
		PublicationTime:  postTime,
	}
	if reply.Location != nil {
		rec.Location = *reply.Location
	}
	if reply.Price != nil {
		rec.Price = *reply.Price
	}
	if reply.IsNew != nil {
		rec.IsNew = *reply.IsNew
	}
	if reply.PetsAllowed != nil {
		rec.PetsAllowed = *reply.PetsAllowed
	}
	return rec, nil
}

func parseStatusDate(value string) (time.Time, error) {
	for _, layout := range statusLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("unsupported date format %q", value)
}

// firstJSONObject возвращает первый сбалансированный JSON-объект в тексте.
// Модели любят оборачивать ответ в рассуждения или markdown, поэтому
// берется только фрагмент между первой '{' и парной ей '}'.
func firstJSONObject(raw string) (string, error) {
	start := -1
	depth := 0
	inString := false
	escaped := false

	for i := 0; i < len(raw); i++ {
		c := raw[i]
		if start == -1 {
			if c == '{' {
				start = i
				depth = 1
			}
			continue
		}

		if escaped {
			escaped = false
			continue
		}
		switch c {
		case '\\':
			if inString {
				escaped = true
			}
		case '"':
			inString = !inString
		case '{':
			if !inString {
				depth++
			}
		case '}':
			if !inString {
				depth--
				if depth == 0 {
					return raw[start : i+1], nil
				}
			}
		}
	}

	if start == -1 {
		return "", fmt.Errorf("no JSON object in model response")
	}
	return "", fmt.Errorf("unbalanced JSON object in model response")
}
