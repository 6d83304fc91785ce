package errs

// Hard failures: nothing happened, caller only checks ok.
var (
	ErrArgs        = NewCodeError(1001, "invalid argument")
	ErrNotFound    = NewCodeError(1002, "record not found")
	ErrStorage     = NewCodeError(1500, "storage unavailable")
	ErrTranslation = NewCodeError(1501, "translation failed")
	ErrToken       = NewCodeError(1600, "token invalid or expired")
)

// Soft rejections: surfaced to the UI as an inline message, not a transport
// error. The Msg strings are part of the API contract.
var (
	ErrUsernameTaken = NewCodeError(2001, "username already taken")
	ErrChatnameTaken = NewCodeError(2002, "chatname already taken")
	ErrAlreadyMember = NewCodeError(2003, "user already in chat")
)

// IsSoftReject reports whether err is one of the business rejections the UI
// renders inline rather than treating as a failure.
func IsSoftReject(err error) bool {
	code := CodeOf(err)
	return code >= 2000 && code < 3000
}
