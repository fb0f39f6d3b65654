package errors

func (d Definition) Error() string {
	return d.Message
}

// Definition 表示业务错误码及默认信息。
type Definition struct {
	Code    string
	Message string
}

// 通用错误。
var (
	InvalidRequest   = Definition{Code: "INVALID_REQUEST", Message: "Invalid request"}
	ValidationFailed = Definition{Code: "VALIDATION_FAILED", Message: "Validation failed"}
	Internal         = Definition{Code: "INTERNAL_ERROR", Message: "Internal error"}
	TooManyRequests  = Definition{Code: "RATE_LIMITED", Message: "Too many requests, retry later"}
	Unavailable      = Definition{Code: "SERVICE_UNAVAILABLE", Message: "Service unavailable"}
)

// 认证相关错误。
var (
	LoginFailed            = Definition{Code: "LOGIN_FAILED", Message: "Invalid email or password"}
	EmailAlreadyRegistered = Definition{Code: "EMAIL_ALREADY_REGISTERED", Message: "Email already registered"}
	Unauthorized           = Definition{Code: "UNAUTHORIZED", Message: "Unauthorized"}
	CSRFInvalid            = Definition{Code: "CSRF_INVALID", Message: "CSRF token missing or invalid"}
	TokenInvalid           = Definition{Code: "TOKEN_INVALID", Message: "Token invalid or expired"}
	InvalidUserID          = Definition{Code: "INVALID_USER_ID", Message: "Invalid user ID format"}
	AccountNotFound        = Definition{Code: "ACCOUNT_NOT_FOUND", Message: "Account not found"}
)

// 验证码相关错误。
var (
	CodeChannelInvalid         = Definition{Code: "CODE_CHANNEL_INVALID", Message: "Verification channel invalid"}
	CodeDispatchFailed         = Definition{Code: "CODE_DISPATCH_FAILED", Message: "Failed to send verification code"}
	CaptchaRateLimited         = Definition{Code: "CAPTCHA_RATE_LIMITED", Message: "Verification code daily limit reached"}
	VerificationCodeInvalid    = Definition{Code: "VERIFICATION_CODE_INVALID", Message: "Verification code invalid"}
	VerificationSliderRequired = Definition{Code: "VERIFICATION_SLIDER_REQUIRED", Message: "Slider verification required"}
	VerificationSliderFailed   = Definition{Code: "VERIFICATION_SLIDER_FAILED", Message: "Slider verification failed"}
)

// 注册向导错误。
var (
	WizardNotFound         = Definition{Code: "WIZARD_NOT_FOUND", Message: "Wizard not found or expired"}
	WizardKindInvalid      = Definition{Code: "WIZARD_KIND_INVALID", Message: "Wizard kind must be seeker or business"}
	WizardStepInvalid      = Definition{Code: "WIZARD_STEP_INVALID", Message: "Operation not available at the current step"}
	WizardBusy             = Definition{Code: "WIZARD_BUSY", Message: "Wizard is being updated, retry shortly"}
	ExperienceIndexInvalid = Definition{Code: "EXPERIENCE_INDEX_INVALID", Message: "Experience record index out of range"}
	ICardNotConfirmed      = Definition{Code: "ICARD_NOT_CONFIRMED", Message: "I-Card must be confirmed first"}
)

// Lookup 提供错误码查询能力。
var Lookup = map[string]Definition{
	InvalidRequest.Code:             InvalidRequest,
	ValidationFailed.Code:           ValidationFailed,
	Internal.Code:                   Internal,
	TooManyRequests.Code:            TooManyRequests,
	Unavailable.Code:                Unavailable,
	LoginFailed.Code:                LoginFailed,
	EmailAlreadyRegistered.Code:     EmailAlreadyRegistered,
	Unauthorized.Code:               Unauthorized,
	CSRFInvalid.Code:                CSRFInvalid,
	TokenInvalid.Code:               TokenInvalid,
	InvalidUserID.Code:              InvalidUserID,
	AccountNotFound.Code:            AccountNotFound,
	CodeChannelInvalid.Code:         CodeChannelInvalid,
	CodeDispatchFailed.Code:         CodeDispatchFailed,
	CaptchaRateLimited.Code:         CaptchaRateLimited,
	VerificationCodeInvalid.Code:    VerificationCodeInvalid,
	VerificationSliderRequired.Code: VerificationSliderRequired,
	VerificationSliderFailed.Code:   VerificationSliderFailed,
	WizardNotFound.Code:             WizardNotFound,
	WizardKindInvalid.Code:          WizardKindInvalid,
	WizardStepInvalid.Code:          WizardStepInvalid,
	WizardBusy.Code:                 WizardBusy,
	ExperienceIndexInvalid.Code:     ExperienceIndexInvalid,
	ICardNotConfirmed.Code:          ICardNotConfirmed,
}

// Get 根据错误码返回 Definition，若不存在则返回空 Definition。
func Get(code string) Definition {
	if def, ok := Lookup[code]; ok {
		return def
	}
	return Definition{Code: code, Message: "Unexpected error"}
}
