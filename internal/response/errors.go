package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Authentication ────────────────────────────────────────────────
	ErrInvalidCredentials ErrCode = "INVALID_CREDENTIALS"
	ErrTokenRequired      ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid       ErrCode = "TOKEN_INVALID"
	ErrTokenExpired       ErrCode = "TOKEN_EXPIRED"

	// ─── Authorization ─────────────────────────────────────────────────
	ErrForbidden             ErrCode = "FORBIDDEN"
	ErrParticipantAccessOnly ErrCode = "PARTICIPANT_ACCESS_ONLY"
	ErrReviewerAccessOnly    ErrCode = "REVIEWER_ACCESS_ONLY"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"
	ErrInvalidSubject ErrCode = "INVALID_SUBJECT"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound ErrCode = "NOT_FOUND"

	// ─── Exam-specific ─────────────────────────────────────────────────
	ErrAlreadySubmitted   ErrCode = "ALREADY_SUBMITTED"
	ErrSessionNotStarted  ErrCode = "SESSION_NOT_STARTED"
	ErrSessionUnavailable ErrCode = "SESSION_UNAVAILABLE"
	ErrInvalidTransition  ErrCode = "INVALID_TRANSITION"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	// ─── Authentication ────────────────────────────────────────────────
	case ErrInvalidCredentials:
		return "Невірна електронна пошта або пароль."
	case ErrTokenRequired:
		return "Потрібен токен автентифікації."
	case ErrTokenInvalid:
		return "Недійсний токен автентифікації."
	case ErrTokenExpired:
		return "Термін дії токена автентифікації закінчився."

	// ─── Authorization ─────────────────────────────────────────────────
	case ErrForbidden:
		return "У вас немає доступу до цього ресурсу."
	case ErrParticipantAccessOnly:
		return "Цей ресурс доступний лише учасникам тестування."
	case ErrReviewerAccessOnly:
		return "Цей ресурс доступний лише перевіряючим."

	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "Помилка валідації. Перевірте введені дані."
	case ErrInvalidPayload:
		return "Недійсний формат запиту."
	case ErrInvalidSubject:
		return "Невідомий предмет тестування."

	// ─── Resources ─────────────────────────────────────────────────────
	case ErrNotFound:
		return "Ресурс не знайдено."

	// ─── Exam-specific ─────────────────────────────────────────────────
	case ErrAlreadySubmitted:
		return "Ви вже проходили тест."
	case ErrSessionNotStarted:
		return "Тестування ще не розпочато."
	case ErrSessionUnavailable:
		return "Сеанс тестування наразі недоступний."
	case ErrInvalidTransition:
		return "Неможливо перевести сеанс у цей стан."

	// ─── Rate Limiting ─────────────────────────────────────────────────
	case ErrRateLimitExceeded:
		return "Забагато запитів. Спробуйте пізніше."

	// ─── Server ────────────────────────────────────────────────────────
	case ErrInternal:
		return "Сталася внутрішня помилка сервера."
	default:
		return "Сталася неочікувана помилка."
	}
}
