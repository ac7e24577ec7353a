package audit

import (
	"fmt"
	"os"
	"strings"
	"sync"
)

// FileSink пишет журнал аудита в текстовый файл. Каждая запись — заголовок,
// выровненный дефисами по центру, тело и пустая строка-разделитель.
type FileSink struct {
	mu   sync.Mutex
	path string
}

const titleWidth = 30

func NewFileSink(path string) (*FileSink, error) {
	if path == "" {
		return nil, fmt.Errorf("audit log path cannot be empty")
	}
	return &FileSink{path: path}, nil
}

// Store дописывает одну запись в конец файла.
func (s *FileSink) Store(title, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open audit log: %w", err)
	}
	defer f.Close()

	if _, err := fmt.Fprintf(f, "%s\n%s\n\n", centerTitle(title), text); err != nil {
		return fmt.Errorf("failed to append audit entry: %w", err)
	}
	return nil
}

// centerTitle выравнивает заголовок дефисами до titleWidth символов.
// Длинные заголовки остаются как есть.
func centerTitle(title string) string {
	length := len([]rune(title))
	if length >= titleWidth {
		return title
	}
	left := (titleWidth - length) / 2
	right := titleWidth - length - left
	return strings.Repeat("-", left) + title + strings.Repeat("-", right)
}
