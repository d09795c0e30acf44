// Package schemas defines the request structures for various operations in the application.
package schemas

// RegistrationRequest is a struct that represents a registration request
// Username is required and must be 3 to 20 characters of letters, digits and underscores
// Email is required and must be a valid email
// Password is required, 8 to 72 characters and at most 72 bytes, with upper and lower case letters and a digit
// ConfirmPassword must repeat the password
type RegistrationRequest struct {
	Username        string `json:"username" validate:"required,min=3,max=20,username_validation" sanitize:"strict"`
	Email           string `json:"email" validate:"required,email,email_validation" sanitize:"trim"`
	Password        string `json:"password" validate:"required,min=8,max=72,bcrypt_length,password_validation"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
}

// LoginRequest is a struct that represents a login request
// Username is required and must be at least 3 characters
// Password is required
type LoginRequest struct {
	Username string `json:"username" validate:"required,min=3,max=20" sanitize:"strict"`
	Password string `json:"password" validate:"required"`
}

// ForgotPasswordRequest is a struct that represents a request for a password reset email
type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email,email_validation" sanitize:"trim"`
}

// ResetPasswordRequest is a struct that represents the submission of a new password with a reset token
// Token must be the 64 hex characters of the reset link
type ResetPasswordRequest struct {
	Token           string `json:"token" validate:"required,len=64,hexadecimal" sanitize:"strict"`
	Password        string `json:"password" validate:"required,min=8,max=72,bcrypt_length,password_validation"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
}

// ChangePasswordRequest is a struct that represents a PasswordChange request
// CurrentPassword is required
// NewPassword follows the registration password rules
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=8,max=72,bcrypt_length,password_validation"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=NewPassword"`
}

// UpdateProfileRequest is a struct that represents a profile change
type UpdateProfileRequest struct {
	Username string `json:"username" validate:"required,min=3,max=20,username_validation" sanitize:"strict"`
	Email    string `json:"email" validate:"required,email,email_validation" sanitize:"trim"`
}
