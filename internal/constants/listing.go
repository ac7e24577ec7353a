package constants

// Заголовки записей в журнале аудита.
const (
	AuditTitleModelResponse   = "MODEL RESPONSE"
	AuditTitleModelError      = "MODEL REQUEST ERROR"
	AuditTitleParseError      = "ERROR PARSING RESPONSE"
	AuditTitleReconcileDiff   = "RECONCILE DIFF"
	AuditTitleDuplicateInsert = "DUPLICATE INSERT"
	AuditTitleFinalFailure    = "EXTRACTION FAILED"
)

// MaxModelAttempts — бюджет попыток генеративной модели на один пост.
// Ошибки транспорта расходуют тот же бюджет, что и ошибки валидации.
const MaxModelAttempts = 3
