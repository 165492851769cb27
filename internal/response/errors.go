package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Authentication ────────────────────────────────────────────────
	ErrInvalidCredentials ErrCode = "INVALID_CREDENTIALS"
	ErrEmailTaken         ErrCode = "EMAIL_TAKEN"
	ErrUsernameTaken      ErrCode = "USERNAME_TAKEN"
	ErrTokenRequired      ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid       ErrCode = "TOKEN_INVALID"
	ErrTokenExpired       ErrCode = "TOKEN_EXPIRED"

	// ─── Authorization ─────────────────────────────────────────────────
	ErrForbidden       ErrCode = "FORBIDDEN"
	ErrAdminAccessOnly ErrCode = "ADMIN_ACCESS_ONLY"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidID      ErrCode = "INVALID_ID"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound ErrCode = "NOT_FOUND"
	ErrConflict ErrCode = "CONFLICT"

	// ─── Test-session-specific ─────────────────────────────────────────
	ErrNoQuestionsAvailable ErrCode = "NO_QUESTIONS_AVAILABLE"
	ErrAlreadyCompleted     ErrCode = "ALREADY_COMPLETED"
	ErrSessionExpired       ErrCode = "SESSION_EXPIRED"
	ErrQuotaExceeded        ErrCode = "QUOTA_EXCEEDED"

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
		return "Email yoki parol noto'g'ri."
	case ErrEmailTaken:
		return "Bu email allaqachon ro'yxatdan o'tgan."
	case ErrUsernameTaken:
		return "Bu foydalanuvchi nomi band."
	case ErrTokenRequired:
		return "Autentifikatsiya tokeni talab qilinadi."
	case ErrTokenInvalid:
		return "Autentifikatsiya tokeni yaroqsiz."
	case ErrTokenExpired:
		return "Autentifikatsiya tokeni muddati tugagan."

	// ─── Authorization ─────────────────────────────────────────────────
	case ErrForbidden:
		return "Bu resursga kirish huquqingiz yo'q."
	case ErrAdminAccessOnly:
		return "Bu resurs faqat administratorlar uchun."

	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "Tekshiruv muvaffaqiyatsiz. Ma'lumotlarni qayta tekshiring."
	case ErrInvalidID:
		return "ID formati noto'g'ri."
	case ErrInvalidPayload:
		return "So'rov ma'lumotlari noto'g'ri."

	// ─── Resources ─────────────────────────────────────────────────────
	case ErrNotFound:
		return "Resurs topilmadi."
	case ErrConflict:
		return "Resurs allaqachon mavjud."

	// ─── Test-session-specific ─────────────────────────────────────────
	case ErrNoQuestionsAvailable:
		return "Savollar topilmadi. Boshqa parametrlarni tanlang."
	case ErrAlreadyCompleted:
		return "Test allaqachon yakunlangan."
	case ErrSessionExpired:
		return "Test vaqti tugagan."
	case ErrQuotaExceeded:
		return "Kunlik test limiti tugadi. Ertaga qayta urinib ko'ring."

	// ─── Rate Limiting ─────────────────────────────────────────────────
	case ErrRateLimitExceeded:
		return "Juda ko'p so'rovlar. Keyinroq qayta urinib ko'ring."

	// ─── Server ────────────────────────────────────────────────────────
	case ErrInternal:
		return "Ichki server xatosi yuz berdi."
	default:
		return "Kutilmagan xatolik yuz berdi."
	}
}
