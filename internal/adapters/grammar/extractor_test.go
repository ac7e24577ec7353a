package grammar

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/MoguchiyDuh/televito/internal/core/domain"
)

const listingText = `
🏡 Локация - Hercegovačka , Belgrade Waterfront, Savski venac
 🔹 Актуальность - свободна с  06 дек. 2024
 💸 1400 €
 🔹 Срок аренды - от 12 месяцев
 🔹 Новый дом
 🔹 2.0 комнаты
 🔹 Площадь 55 m²
 🔹 15/23 этаж
 🐾 С животными – нельзя
 📞 Запись на просмотр @BelgradeTeam
 🚗 Парковка -  на участке
#цена1100_1500
`

func TestExtractFullListing(t *testing.T) {
	post := time.Date(2024, time.November, 1, 12, 0, 0, 0, time.UTC)

	rec, err := NewExtractor().Extract(context.Background(), listingText, post)
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
	if rec.Price != 1400.0 {
		t.Errorf("price = %v, want 1400.0", rec.Price)
	}
	if rec.Duration == nil || *rec.Duration != 12 {
		t.Errorf("duration = %v, want 12", rec.Duration)
	}
	if !rec.IsNew {
		t.Error("is_new = false, want true")
	}
	if rec.Rooms == nil || *rec.Rooms != 2.0 {
		t.Errorf("rooms = %v, want 2.0", rec.Rooms)
	}
	if rec.RoomDescription != nil {
		t.Errorf("room_description = %q, want nil", *rec.RoomDescription)
	}
	if rec.Area == nil || *rec.Area != 55.0 {
		t.Errorf("area = %v, want 55.0", rec.Area)
	}
	if rec.Floor == nil || *rec.Floor != 15 {
		t.Errorf("floor = %v, want 15", rec.Floor)
	}
	if rec.FloorsInBuilding == nil || *rec.FloorsInBuilding != 23 {
		t.Errorf("floors_in_building = %v, want 23", rec.FloorsInBuilding)
	}
	if rec.PetsAllowed {
		t.Error("pets_allowed = true, want false")
	}
	if rec.Parking == nil || *rec.Parking != "на участке" {
		t.Errorf("parking = %v, want \"на участке\"", rec.Parking)
	}
	if !rec.PublicationTime.Equal(post) {
		t.Errorf("publication time = %v, want %v", rec.PublicationTime, post)
	}
}

func TestExtractVariants(t *testing.T) {
	post := time.Date(2024, time.November, 1, 0, 0, 0, 0, time.UTC)

	t.Run("fractional rooms and pets allowed", func(t *testing.T) {
		text := `🏡 Локация - Narodnih heroja , Blok 33, Novi Beograd
 🔹 Актуальность - свободна с  01 дек. 2024
 💸 780 €
 🔹 Срок аренды - от 6 месяцев
 🔹 1,5 комнаты
 🔹 Площадь 50 m²
 🔹 9/9 этаж
 🐾 С животными – можно
 🚗 Cвободная зона`
		rec, err := NewExtractor().Extract(context.Background(), text, post)
		if err != nil {
			t.Fatalf("Extract returned error: %v", err)
		}
		if rec.Rooms == nil || *rec.Rooms != 1.5 {
			t.Errorf("rooms = %v, want 1.5", rec.Rooms)
		}
		if !rec.PetsAllowed {
			t.Error("pets_allowed = false, want true")
		}
		if rec.IsNew {
			t.Error("is_new = true, want false")
		}
		if rec.Parking == nil || *rec.Parking != "Cвободная зона" {
			t.Errorf("parking = %v, want \"Cвободная зона\"", rec.Parking)
		}
	})

	t.Run("high basement floor with room description", func(t *testing.T) {
		text := `🏡 Локация - Kapetan Mišina , Centar, Stari grad
 🔹 Актуальность - свободна сейчас
 💸 1200 €
 🔹 Срок аренды - от 12 месяцев
 🔹 3.0 комнаты (2 спальни)
 🔹 Площадь 60 m²
 🔹 Высокий цокольный этаж/4 этаж
 🐾 С животными – нельзя
 🚗 Парковка -  Зона II`
		rec, err := NewExtractor().Extract(context.Background(), text, post)
		if err != nil {
			t.Fatalf("Extract returned error: %v", err)
		}
		if rec.Floor == nil || *rec.Floor != 0 {
			t.Errorf("floor = %v, want 0", rec.Floor)
		}
		if rec.FloorsInBuilding == nil || *rec.FloorsInBuilding != 4 {
			t.Errorf("floors_in_building = %v, want 4", rec.FloorsInBuilding)
		}
		if rec.RoomDescription == nil || *rec.RoomDescription != "2 спальни" {
			t.Errorf("room_description = %v, want \"2 спальни\"", rec.RoomDescription)
		}
		if rec.Status == nil || !rec.Status.Equal(post) {
			t.Errorf("status = %v, want post date %v", rec.Status, post)
		}
		if rec.Parking == nil || *rec.Parking != "Зона II" {
			t.Errorf("parking = %v, want \"Зона II\"", rec.Parking)
		}
	})

	t.Run("new building marker before the price line", func(t *testing.T) {
		text := `🏡 Локация - Somewhere
 🔹 Новый дом
 💸 900 €
 🔹 Срок аренды - от 12 месяцев
 🔹 2.0 комнаты`
		rec, err := NewExtractor().Extract(context.Background(), text, post)
		if err != nil {
			t.Fatalf("Extract returned error: %v", err)
		}
		if !rec.IsNew {
			t.Error("is_new = false, want true")
		}
		if rec.Duration == nil || *rec.Duration != 12 {
			t.Errorf("duration = %v, want 12", rec.Duration)
		}
		if rec.Rooms == nil || *rec.Rooms != 2.0 {
			t.Errorf("rooms = %v, want 2.0", rec.Rooms)
		}
	})

	t.Run("numerator-only floor line", func(t *testing.T) {
		text := `🏡 Локация - Somewhere
 💸 700 €
 🔹 5/ этаж`
		rec, err := NewExtractor().Extract(context.Background(), text, post)
		if err != nil {
			t.Fatalf("Extract returned error: %v", err)
		}
		if rec.Floor == nil || *rec.Floor != 5 {
			t.Errorf("floor = %v, want 5", rec.Floor)
		}
		if rec.FloorsInBuilding != nil {
			t.Errorf("floors_in_building = %v, want nil", *rec.FloorsInBuilding)
		}
	})

	t.Run("basement floor variant", func(t *testing.T) {
		text := `🏡 Локация - Somewhere
 💸 500 €
 🔹 Подвал/3 этаж`
		rec, err := NewExtractor().Extract(context.Background(), text, post)
		if err != nil {
			t.Fatalf("Extract returned error: %v", err)
		}
		if rec.Floor == nil || *rec.Floor != -1 {
			t.Errorf("floor = %v, want -1", rec.Floor)
		}
	})

	t.Run("studio counts as one room", func(t *testing.T) {
		text := `🏡 Локация - Somewhere
 💸 500 €
 🔹 Студия`
		rec, err := NewExtractor().Extract(context.Background(), text, post)
		if err != nil {
			t.Fatalf("Extract returned error: %v", err)
		}
		if rec.Rooms == nil || *rec.Rooms != 1.0 {
			t.Errorf("rooms = %v, want 1.0", rec.Rooms)
		}
	})

	t.Run("hashtag before parking leaves it empty", func(t *testing.T) {
		text := `🏡 Локация - Somewhere
 💸 500 €
#цена500_800
 🚗 Парковка - Зона A`
		rec, err := NewExtractor().Extract(context.Background(), text, post)
		if err != nil {
			t.Fatalf("Extract returned error: %v", err)
		}
		if rec.Parking != nil {
			t.Errorf("parking = %q, want nil", *rec.Parking)
		}
	})

	t.Run("missing optional fields default to nil", func(t *testing.T) {
		text := `🏡 Локация - Somewhere
 💸 500 €`
		rec, err := NewExtractor().Extract(context.Background(), text, post)
		if err != nil {
			t.Fatalf("Extract returned error: %v", err)
		}
		if rec.Status != nil || rec.Duration != nil || rec.Rooms != nil ||
			rec.Area != nil || rec.Floor != nil || rec.FloorsInBuilding != nil || rec.Parking != nil {
			t.Errorf("optional fields not nil: %+v", rec)
		}
	})
}

func TestExtractGrammarMismatch(t *testing.T) {
	post := time.Date(2024, time.November, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		text string
	}{
		{
			"missing location marker",
			"💸 1400 €\n🔹 Площадь 55 m²",
		},
		{
			"missing price line",
			"🏡 Локация - Somewhere\n🔹 Площадь 55 m²",
		},
		{
			"floor line without slash pattern",
			"🏡 Локация - Somewhere\n💸 900 €\n🔹 5 этаж",
		},
		{
			"relative availability wording",
			"🏡 Локация - Somewhere\n🔹 Актуальность - будет свободна завтра\n💸 1000 €",
		},
		{
			"rooms line without a number",
			"🏡 Локация - Somewhere\n💸 1000 €\n🔹 5- комнат(3 спальни)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewExtractor().Extract(context.Background(), tt.text, post)
			if !errors.Is(err, domain.ErrGrammarMismatch) {
				t.Errorf("Extract() error = %v, want ErrGrammarMismatch", err)
			}
		})
	}
}

func TestExtractIsDeterministic(t *testing.T) {
	post := time.Date(2024, time.November, 1, 0, 0, 0, 0, time.UTC)
	e := NewExtractor()

	first, err := e.Extract(context.Background(), listingText, post)
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}
	for i := 0; i < 5; i++ {
		again, err := e.Extract(context.Background(), listingText, post)
		if err != nil {
			t.Fatalf("Extract returned error on run %d: %v", i, err)
		}
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("run %d produced a different record", i)
		}
	}
}
