package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Authentication ────────────────────────────────────────────────
	ErrInvalidCredentials ErrCode = "INVALID_CREDENTIALS"
	ErrTokenRequired      ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid       ErrCode = "TOKEN_INVALID"
	ErrTokenExpired       ErrCode = "TOKEN_EXPIRED"
	ErrOTPInvalid         ErrCode = "OTP_INVALID"
	ErrWeakPassword       ErrCode = "WEAK_PASSWORD"

	// ─── Authorization ─────────────────────────────────────────────────
	ErrForbidden          ErrCode = "FORBIDDEN"
	ErrStudentAccessOnly  ErrCode = "STUDENT_ACCESS_ONLY"
	ErrAdminAccessOnly    ErrCode = "ADMIN_ACCESS_ONLY"
	ErrSuperAdminRequired ErrCode = "SUPER_ADMIN_REQUIRED"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidID      ErrCode = "INVALID_ID"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound        ErrCode = "NOT_FOUND"
	ErrConflict        ErrCode = "CONFLICT"
	ErrEmailTaken      ErrCode = "EMAIL_TAKEN"
	ErrRollNumberTaken ErrCode = "ROLL_NUMBER_TAKEN"
	ErrActionForbidden ErrCode = "ACTION_FORBIDDEN"

	// ─── Forms ─────────────────────────────────────────────────────────
	ErrFormClosed            ErrCode = "FORM_CLOSED"
	ErrDuplicateSubmission   ErrCode = "DUPLICATE_SUBMISSION"
	ErrMissingRequiredFields ErrCode = "MISSING_REQUIRED_FIELDS"
	ErrInvalidFieldDef       ErrCode = "INVALID_FIELD_DEFINITION"

	// ─── Files ─────────────────────────────────────────────────────────
	ErrFileRequired    ErrCode = "FILE_REQUIRED"
	ErrUnsupportedFile ErrCode = "UNSUPPORTED_FILE_TYPE"
	ErrFileTooLarge    ErrCode = "FILE_TOO_LARGE"

	// ─── Reports ───────────────────────────────────────────────────────
	ErrReportFilterRequired ErrCode = "REPORT_FILTER_REQUIRED"

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
		return "Invalid email/roll number or password."
	case ErrTokenRequired:
		return "Authentication token is required."
	case ErrTokenInvalid:
		return "Authentication token is invalid."
	case ErrTokenExpired:
		return "Authentication token has expired."
	case ErrOTPInvalid:
		return "Invalid or expired OTP. Please request a new one."
	case ErrWeakPassword:
		return "Password must be at least 8 characters with uppercase, lowercase and a digit."

	// ─── Authorization ─────────────────────────────────────────────────
	case ErrForbidden:
		return "You do not have permission to access this resource."
	case ErrStudentAccessOnly:
		return "This resource is restricted to students."
	case ErrAdminAccessOnly:
		return "This resource is restricted to administrators."
	case ErrSuperAdminRequired:
		return "This resource is restricted to the super admin."

	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "Validation failed. Please check your input."
	case ErrInvalidID:
		return "Invalid ID format."
	case ErrInvalidPayload:
		return "Invalid request payload."

	// ─── Resources ─────────────────────────────────────────────────────
	case ErrNotFound:
		return "Resource not found."
	case ErrConflict:
		return "Resource already exists."
	case ErrEmailTaken:
		return "An account with this email already exists."
	case ErrRollNumberTaken:
		return "An account with this roll number already exists."
	case ErrActionForbidden:
		return "This action is not allowed."

	// ─── Forms ─────────────────────────────────────────────────────────
	case ErrFormClosed:
		return "This form is closed. The deadline has passed."
	case ErrDuplicateSubmission:
		return "You have already submitted a response to this form."
	case ErrMissingRequiredFields:
		return "Please fill in all required fields."
	case ErrInvalidFieldDef:
		return "Invalid form field definition."

	// ─── Files ─────────────────────────────────────────────────────────
	case ErrFileRequired:
		return "A file upload is required."
	case ErrUnsupportedFile:
		return "Unsupported file type. Only PDF files are accepted."
	case ErrFileTooLarge:
		return "File size exceeds the limit."

	// ─── Reports ───────────────────────────────────────────────────────
	case ErrReportFilterRequired:
		return "At least one report filter is required."

	// ─── Rate Limiting ─────────────────────────────────────────────────
	case ErrRateLimitExceeded:
		return "Too many requests. Please try again later."

	// ─── Server ────────────────────────────────────────────────────────
	case ErrInternal:
		return "An internal server error occurred."
	default:
		return "An unexpected error occurred."
	}
}
