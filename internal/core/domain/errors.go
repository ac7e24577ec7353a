package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrGrammarMismatch — строка не соответствует ожидаемому шаблону
	// построчной грамматики; извлечение передается генеративной модели.
	ErrGrammarMismatch = errors.New("listing text does not match the line grammar")

	// ErrModelExhausted — генеративная модель не дала валидный ответ
	// за отведенное число попыток.
	ErrModelExhausted = errors.New("model retry budget exhausted")

	// ErrDuplicateListing — нарушение уникальности отпечатка при вставке
	// (гонка с параллельным запуском).
	ErrDuplicateListing = errors.New("listing with the same fingerprint already exists")

	// ErrListingNotFound — запись с таким идентификатором отсутствует.
	ErrListingNotFound = errors.New("listing not found")
)

// DateResolutionError — дата в тексте не распознана.
type DateResolutionError struct {
	Expr   string
	Reason string
}

func (e *DateResolutionError) Error() string {
	return fmt.Sprintf("cannot resolve date %q: %s", e.Expr, e.Reason)
}

// SchemaValidationError — ответ модели не прошел проверку по схеме.
type SchemaValidationError struct {
	Reason string
}

func (e *SchemaValidationError) Error() string {
	return fmt.Sprintf("model reply failed schema validation: %s", e.Reason)
}
