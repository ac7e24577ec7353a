package port

// AuditSinkPort — журнал для офлайн-разбора: сырые ответы модели,
// ошибки парсинга, диффы сверки. Пайплайн его не читает.
type AuditSinkPort interface {
	// Store дописывает текст под заголовком в конец журнала.
	Store(title, text string) error
}
