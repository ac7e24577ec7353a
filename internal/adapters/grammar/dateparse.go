package grammar

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/MoguchiyDuh/televito/internal/core/domain"
)

// monthsByPrefix сопоставляет первые три буквы русского названия месяца
// с номером месяца.
var monthsByPrefix = map[string]time.Month{
	"янв": time.January,
	"фев": time.February,
	"мар": time.March,
	"апр": time.April,
	"мая": time.May,
	"июн": time.June,
	"июл": time.July,
	"авг": time.August,
	"сен": time.September,
	"окт": time.October,
	"ноя": time.November,
	"дек": time.December,
}

// ResolveDate превращает частичную русскую дату ("06 дек. 2024", "20")
// в абсолютную, используя дату поста как точку отсчета.
// День обязателен. Пропущенный месяц берется из даты поста либо
// сдвигается на следующий, если день уже прошел (с переходом через декабрь).
// Пропущенный год берется из даты поста либо сдвигается на следующий,
// если месяц раньше месяца поста.
func ResolveDate(expr string, postDate time.Time) (time.Time, error) {
	lowered := strings.ToLower(expr)
	if strings.Contains(lowered, "сейчас") {
		return truncateToDate(postDate), nil
	}

	parts := splitDateTokens(expr)
	if len(parts) == 0 {
		return time.Time{}, &domain.DateResolutionError{Expr: expr, Reason: "empty expression"}
	}

	day, err := strconv.Atoi(parts[0])
	if err != nil {
		return time.Time{}, &domain.DateResolutionError{Expr: expr, Reason: "day is missing"}
	}
	if day < 1 || day > 31 {
		return time.Time{}, &domain.DateResolutionError{Expr: expr, Reason: "day out of range"}
	}

	var month time.Month
	if len(parts) > 1 {
		month, err = parseMonth(parts[1])
		if err != nil {
			return time.Time{}, &domain.DateResolutionError{Expr: expr, Reason: err.Error()}
		}
	} else if postDate.Day() <= day {
		month = postDate.Month()
	} else if postDate.Month() == time.December {
		month = time.January
	} else {
		month = postDate.Month() + 1
	}

	var year int
	if len(parts) > 2 {
		year, err = strconv.Atoi(parts[2])
		if err != nil {
			return time.Time{}, &domain.DateResolutionError{Expr: expr, Reason: "year is not a number"}
		}
	} else if postDate.Month() <= month {
		year = postDate.Year()
	} else {
		year = postDate.Year() + 1
	}

	resolved := time.Date(year, month, day, 0, 0, 0, 0, postDate.Location())
	if resolved.Day() != day {
		return time.Time{}, &domain.DateResolutionError{Expr: expr, Reason: "day does not exist in that month"}
	}
	return resolved, nil
}

// splitDateTokens разбивает выражение на токены дня, месяца и года,
// отбрасывая точки и маркер года "г".
func splitDateTokens(expr string) []string {
	cleaned := strings.ReplaceAll(expr, ".", " ")
	fields := strings.Fields(cleaned)
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		if strings.ToLower(f) == "г" {
			continue
		}
		tokens = append(tokens, f)
	}
	return tokens
}

func parseMonth(token string) (time.Month, error) {
	if n, err := strconv.Atoi(token); err == nil {
		if n < 1 || n > 12 {
			return 0, fmt.Errorf("month %d out of range", n)
		}
		return time.Month(n), nil
	}

	runes := []rune(strings.ToLower(token))
	if len(runes) > 3 {
		runes = runes[:3]
	}
	if month, ok := monthsByPrefix[string(runes)]; ok {
		return month, nil
	}
	return 0, fmt.Errorf("unknown month name %q", token)
}

func truncateToDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
