package auth

// TokenType tags what a signed token may be used for. The tag is embedded in
// the signed claims and checked at verification time, so a token of one kind
// is never accepted where another kind is required.
type TokenType int

const (
	AccessToken TokenType = iota
	RefreshToken
	ForgotPasswordToken
	EmailVerifyToken
)

func (t TokenType) String() string {
	switch t {
	case AccessToken:
		return "access_token"
	case RefreshToken:
		return "refresh_token"
	case ForgotPasswordToken:
		return "forgot_password_token"
	case EmailVerifyToken:
		return "email_verify_token"
	default:
		return "unknown"
	}
}

// UserVerifyStatus is the verification state of an account. It travels inside
// signed token claims, which is why it lives beside them.
type UserVerifyStatus int

const (
	Unverified UserVerifyStatus = iota
	Verified
	Banned
)

func (s UserVerifyStatus) String() string {
	switch s {
	case Unverified:
		return "unverified"
	case Verified:
		return "verified"
	case Banned:
		return "banned"
	default:
		return "unknown"
	}
}
