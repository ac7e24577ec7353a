package grammar

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/MoguchiyDuh/televito/internal/contextkeys"
	"github.com/MoguchiyDuh/televito/internal/core/domain"
	"github.com/MoguchiyDuh/televito/internal/core/port"
)

// Статус извлечения одного поля.
type fieldStatus int

const (
	statusExtracted fieldStatus = iota
	statusAbsent
	statusMalformed
)

// fieldDescriptor — одна строка таблицы полей: маркер строки и функция
// извлечения. Таблица обходится по порядку курсором по оставшимся строкам,
// поскольку исходный формат всегда использует один и тот же порядок полей.
type fieldDescriptor struct {
	name     string
	required bool
	// anywhere — позиция маркера не несет смысла: поиск идет по всему
	// сообщению с начала и не двигает курсор.
	anywhere bool
	// match проверяет маркер по строке в нижнем регистре.
	match func(lowered string) bool
	// stop прерывает поиск маркера: поле считается отсутствующим.
	stop func(lowered string) bool
	// extract работает с исходной строкой, сохраняя регистр значения.
	extract func(line string, d *draft) fieldStatus
}

// draft накапливает извлеченные поля и причину последней ошибки.
type draft struct {
	rec      domain.ListingRecord
	postTime time.Time
	failure  string
}

var (
	locationRe        = regexp.MustCompile(`(?i)локация\s*-\s*(.+)`)
	statusDayRe       = regexp.MustCompile(`\d{1,2}.*`)
	priceRe           = regexp.MustCompile(`(\d+(?:[.,]\d+)?)`)
	durationRe        = regexp.MustCompile(`(?i)от\s+(\d+)`)
	roomsRe           = regexp.MustCompile(`(\d+(?:\.\d+)?)\s+комнат`)
	parenthesesRe     = regexp.MustCompile(`\((.+)\)`)
	areaRe            = regexp.MustCompile(`(?i)площадь\s+(\d+)`)
	floorNumeratorRe  = regexp.MustCompile(`(\d+)/`)
	floorsInBuildRe   = regexp.MustCompile(`/(\d+)`)
	parkingMarkerRe   = regexp.MustCompile(`(?i)парковка\s*-`)
	spaceBeforeComma  = regexp.MustCompile(`\s+,`)
)

// fieldTable — канонический порядок полей объявления.
var fieldTable = []fieldDescriptor{
	{
		name:     "location",
		required: true,
		match:    func(l string) bool { return strings.Contains(l, "локация") },
		extract: func(line string, d *draft) fieldStatus {
			m := locationRe.FindStringSubmatch(line)
			if m == nil {
				d.failure = "no text after location marker"
				return statusMalformed
			}
			d.rec.Location = strings.TrimSpace(spaceBeforeComma.ReplaceAllString(m[1], ","))
			return statusExtracted
		},
	},
	{
		name:  "status",
		match: func(l string) bool { return strings.Contains(l, "актуальность") },
		extract: func(line string, d *draft) fieldStatus {
			lowered := strings.ToLower(line)
			if strings.Contains(lowered, "свободна сейчас") {
				status := truncateToDate(d.postTime)
				d.rec.Status = &status
				return statusExtracted
			}
			if !strings.Contains(lowered, "свободна") {
				return statusExtracted // строка есть, даты нет: поле остается пустым
			}
			expr := statusDayRe.FindString(line)
			if expr == "" {
				d.failure = "no day digits in availability expression"
				return statusMalformed
			}
			status, err := ResolveDate(expr, d.postTime)
			if err != nil {
				d.failure = err.Error()
				return statusMalformed
			}
			d.rec.Status = &status
			return statusExtracted
		},
	},
	{
		name:     "price",
		required: true,
		match:    func(l string) bool { return strings.Contains(l, "💸") },
		extract: func(line string, d *draft) fieldStatus {
			m := priceRe.FindStringSubmatch(line)
			if m == nil {
				d.failure = "no number on price line"
				return statusMalformed
			}
			price, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", "."), 64)
			if err != nil {
				d.failure = "price is not a number"
				return statusMalformed
			}
			d.rec.Price = price
			return statusExtracted
		},
	},
	{
		name:  "duration",
		match: func(l string) bool { return strings.Contains(l, "срок аренды") },
		extract: func(line string, d *draft) fieldStatus {
			m := durationRe.FindStringSubmatch(line)
			if m == nil {
				d.failure = "no months number after lease term marker"
				return statusMalformed
			}
			months, _ := strconv.Atoi(m[1])
			d.rec.Duration = &months
			return statusExtracted
		},
	},
	{
		name:     "is_new",
		anywhere: true,
		match:    func(l string) bool { return strings.Contains(l, "новый дом") },
		extract: func(line string, d *draft) fieldStatus {
			d.rec.IsNew = true
			return statusExtracted
		},
	},
	{
		name:  "rooms",
		match: func(l string) bool { return strings.Contains(l, "комнат") || strings.Contains(l, "студия") },
		extract: func(line string, d *draft) fieldStatus {
			lowered := strings.ToLower(line)
			switch {
			case strings.Contains(lowered, "студия"):
				rooms := 1.0
				d.rec.Rooms = &rooms
			case strings.Contains(lowered, "другое"):
				// количество комнат не указано
			default:
				normalized := strings.ReplaceAll(strings.ReplaceAll(lowered, ",", "."), "+", "")
				m := roomsRe.FindStringSubmatch(normalized)
				if m == nil {
					d.failure = "no number before rooms marker"
					return statusMalformed
				}
				rooms, _ := strconv.ParseFloat(m[1], 64)
				d.rec.Rooms = &rooms
			}
			if m := parenthesesRe.FindStringSubmatch(line); m != nil {
				description := strings.TrimSpace(m[1])
				d.rec.RoomDescription = &description
			}
			return statusExtracted
		},
	},
	{
		name:  "area",
		match: func(l string) bool { return strings.Contains(l, "площадь") },
		extract: func(line string, d *draft) fieldStatus {
			m := areaRe.FindStringSubmatch(line)
			if m == nil {
				d.failure = "no number on area line"
				return statusMalformed
			}
			area, _ := strconv.ParseFloat(m[1], 64)
			d.rec.Area = &area
			return statusExtracted
		},
	},
	{
		name:  "floor",
		match: func(l string) bool { return strings.Contains(l, "этаж") },
		extract: func(line string, d *draft) fieldStatus {
			lowered := strings.ToLower(line)
			switch {
			case strings.Contains(lowered, "высокий цокольный этаж"):
				floor := 0
				d.rec.Floor = &floor
			case strings.Contains(lowered, "подвал"):
				floor := -1
				d.rec.Floor = &floor
			default:
				m := floorNumeratorRe.FindStringSubmatch(line)
				if m == nil {
					d.failure = "floor line has no X/Y pattern"
					return statusMalformed
				}
				floor, _ := strconv.Atoi(m[1])
				d.rec.Floor = &floor
			}
			if m := floorsInBuildRe.FindStringSubmatch(line); m != nil {
				floors, _ := strconv.Atoi(m[1])
				d.rec.FloorsInBuilding = &floors
			}
			return statusExtracted
		},
	},
	{
		name:  "pets_allowed",
		match: func(l string) bool { return strings.Contains(l, "с животными") },
		extract: func(line string, d *draft) fieldStatus {
			d.rec.PetsAllowed = strings.Contains(strings.ToLower(line), "можно")
			return statusExtracted
		},
	},
	{
		name: "parking",
		match: func(l string) bool {
			return strings.Contains(l, "парковка") || strings.Contains(l, "🚗")
		},
		// Хэштег означает конец содержательной части объявления.
		stop: func(l string) bool { return strings.HasPrefix(l, "#") },
		extract: func(line string, d *draft) fieldStatus {
			cleaned := strings.ReplaceAll(line, "🚗", "")
			cleaned = parkingMarkerRe.ReplaceAllString(cleaned, "")
			cleaned = strings.TrimSpace(cleaned)
			if cleaned != "" {
				d.rec.Parking = &cleaned
			}
			return statusExtracted
		},
	},
}

// Extractor — детерминированный построчный извлекатель объявлений.
type Extractor struct{}

func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract разбирает текст объявления по таблице полей. Обязательное поле
// без маркера или строка с маркером, но без ожидаемой структуры, роняют
// извлечение целиком: порядок строк несет смысл, и сдвиг рассинхронизирует
// все последующие поля.
func (e *Extractor) Extract(ctx context.Context, text string, postTime time.Time) (*domain.ListingRecord, error) {
	logger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{"component": "grammar_extractor"})

	rawLines := strings.Split(strings.TrimSpace(text), "\n")
	lines := make([]string, 0, len(rawLines))
	for _, l := range rawLines {
		lines = append(lines, strings.TrimSpace(l))
	}

	d := &draft{postTime: postTime}
	d.rec.PublicationTime = postTime

	cursor := 0
	for _, fd := range fieldTable {
		start := cursor
		if fd.anywhere {
			start = 0
		}
		idx := -1
		for i := start; i < len(lines); i++ {
			lowered := strings.ToLower(lines[i])
			if fd.stop != nil && fd.stop(lowered) {
				break
			}
			if fd.match(lowered) {
				idx = i
				break
			}
		}

		if idx == -1 {
			if fd.required {
				return nil, fmt.Errorf("%w: missing required %s line", domain.ErrGrammarMismatch, fd.name)
			}
			continue
		}

		if st := fd.extract(lines[idx], d); st == statusMalformed {
			return nil, fmt.Errorf("%w: %s line %q: %s", domain.ErrGrammarMismatch, fd.name, lines[idx], d.failure)
		}
		if !fd.anywhere {
			cursor = idx + 1
		}
	}

	logger.Debug("Listing text parsed by line grammar", port.Fields{"location": d.rec.Location})

	rec := d.rec
	return &rec, nil
}
