package domain

import (
	"fmt"
	"strings"
	"time"
)

// ListingRecord — каноническая запись об аренде, извлеченная из текста поста.
// Указатели используются для полей, которые могут отсутствовать в объявлении.
type ListingRecord struct {
	ID               int64
	GoogleMapsURL    *string
	Location         string
	Status           *time.Time // дата "свободна с"; nil, если не указана
	Price            float64    // евро
	Duration         *int       // минимальный срок аренды в месяцах
	IsNew            bool
	Rooms            *float64
	RoomDescription  *string
	Area             *float64 // m²
	Floor            *int     // 0 — высокий цокольный этаж, -1 — подвал
	FloorsInBuilding *int
	PetsAllowed      bool
	Parking          *string
	Images           []string // идентификаторы медиа в порядке появления в ленте
	PublicationTime  time.Time
}

// Fingerprint — кортеж, идентифицирующий одно и то же физическое объявление
// между повторными публикациями.
type Fingerprint struct {
	Location         string
	Area             *float64
	Floor            *int
	FloorsInBuilding *int
}

// Fingerprint возвращает отпечаток записи.
func (r ListingRecord) Fingerprint() Fingerprint {
	return Fingerprint{
		Location:         r.Location,
		Area:             r.Area,
		Floor:            r.Floor,
		FloorsInBuilding: r.FloorsInBuilding,
	}
}

// Key возвращает каноническое строковое представление отпечатка.
// Отсутствующие части кодируются как "-", чтобы (nil) и (0) различались.
func (f Fingerprint) Key() string {
	var b strings.Builder
	b.WriteString(f.Location)
	b.WriteString("|")
	if f.Area != nil {
		fmt.Fprintf(&b, "%g", *f.Area)
	} else {
		b.WriteString("-")
	}
	b.WriteString("|")
	if f.Floor != nil {
		fmt.Fprintf(&b, "%d", *f.Floor)
	} else {
		b.WriteString("-")
	}
	b.WriteString("|")
	if f.FloorsInBuilding != nil {
		fmt.Fprintf(&b, "%d", *f.FloorsInBuilding)
	} else {
		b.WriteString("-")
	}
	return b.String()
}

// ReconcileOutcome — результат сверки извлеченной записи с хранилищем.
type ReconcileOutcome int

const (
	OutcomeInserted ReconcileOutcome = iota
	OutcomeUpdated
	OutcomeSkipped
)

func (o ReconcileOutcome) String() string {
	switch o {
	case OutcomeInserted:
		return "inserted"
	case OutcomeUpdated:
		return "updated"
	case OutcomeSkipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// FieldChange описывает одно измененное поле при обновлении записи.
type FieldChange struct {
	Field string
	Old   string
	New   string
}

func (c FieldChange) String() string {
	return fmt.Sprintf("%s: %s -> %s", c.Field, c.Old, c.New)
}

// IngestStats — итог одного прохода по ленте.
type IngestStats struct {
	Seen     int
	Inserted int
	Updated  int
	Skipped  int
	Failed   int
}
