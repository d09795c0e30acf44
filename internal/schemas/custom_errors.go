package schemas

import "net/http"

// CustomError is an entry of the error catalogue returned to clients.
type CustomError struct {
	Message    string `json:"message"`
	Code       string `json:"code"`
	HttpStatus int    `json:"-"`
}

var (
	BadRequest = &CustomError{
		Message:    "The request body is invalid. Please check the request body and try again.",
		Code:       "ERR-001",
		HttpStatus: http.StatusBadRequest,
	}
	UsernameTaken = &CustomError{
		Message:    "The username is already taken. Please try another username.",
		Code:       "ERR-002",
		HttpStatus: http.StatusConflict,
	}
	EmailTaken = &CustomError{
		Message:    "The email is already registered. Please use another email.",
		Code:       "ERR-003",
		HttpStatus: http.StatusConflict,
	}
	InvalidCredentials = &CustomError{
		Message:    "The username or password is incorrect.",
		Code:       "ERR-005",
		HttpStatus: http.StatusUnauthorized,
	}
	UserDisabled = &CustomError{
		Message:    "This account has been disabled.",
		Code:       "ERR-006",
		HttpStatus: http.StatusForbidden,
	}
	CurrentPasswordIncorrect = &CustomError{
		Message:    "The current password is incorrect.",
		Code:       "ERR-007",
		HttpStatus: http.StatusForbidden,
	}
	PasswordReused = &CustomError{
		Message:    "The new password must be different from the current password.",
		Code:       "ERR-008",
		HttpStatus: http.StatusBadRequest,
	}
	ResetTokenInvalid = &CustomError{
		Message:    "The reset link has expired or is invalid. Please request a new one.",
		Code:       "ERR-009",
		HttpStatus: http.StatusBadRequest,
	}
	ResetMailNotSent = &CustomError{
		Message:    "The reset email could not be sent. Please try again later.",
		Code:       "ERR-010",
		HttpStatus: http.StatusInternalServerError,
	}
	PageNotFound = &CustomError{
		Message:    "The page was not found.",
		Code:       "ERR-011",
		HttpStatus: http.StatusNotFound,
	}
	Unauthorized = &CustomError{
		Message:    "The request is unauthorized. Please log in to your account.",
		Code:       "ERR-014",
		HttpStatus: http.StatusUnauthorized,
	}
	InternalServerError = &CustomError{
		Message:    "Something went wrong. Please try again later.",
		Code:       "ERR-015",
		HttpStatus: http.StatusInternalServerError,
	}
)

// Success messages of the account actions.
const (
	RegistrationSucceeded  = "Registration successful. You can now log in."
	LoginSucceeded         = "Login successful."
	LogoutSucceeded        = "You have been logged out."
	ResetMailRequested     = "If the email is registered, you will receive a password reset email shortly."
	PasswordResetSucceeded = "Your password has been reset. Please log in with your new password."
	PasswordChanged        = "Your password has been changed."
	ProfileUpdated         = "Your profile has been updated."
)
