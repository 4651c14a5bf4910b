package models

// SignupRequest carries the data needed to create an account.
type SignupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

// LoginRequest carries credentials plus the request origin that ends up in
// the login audit trail.
type LoginRequest struct {
	// Username accepts either the username or the email of the account.
	Username string `json:"username"`
	Password string `json:"password"`

	// IP is the remote address of the caller, filled by the gateway.
	IP string `json:"-"`
	// ClientIdentity describes the calling client (User-Agent), filled by the gateway.
	ClientIdentity string `json:"-"`
}

// ChangePasswordRequest replaces the password of an authenticated user.
type ChangePasswordRequest struct {
	// UserID is taken from the verified session token, never from the body.
	UserID      string `json:"-"`
	OldPassword string `json:"old_password"`
	Password    string `json:"password"`
}

// ResetPasswordRequest starts the recovery flow.
type ResetPasswordRequest struct {
	UsernameOrEmail string `json:"username_or_email"`
}

// RecoverPasswordRequest finishes the recovery flow.
type RecoverPasswordRequest struct {
	// Token is the raw recovery token taken from the URL path.
	Token    string `json:"-"`
	Password string `json:"password"`
}

// UpdateProfileRequest changes the mutable, non-credential profile fields.
// Empty fields are left untouched.
type UpdateProfileRequest struct {
	UserID   string `json:"-"`
	Username string `json:"username,omitempty"`
	Name     string `json:"name,omitempty"`
}
