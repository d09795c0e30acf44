package schemas

import "net/http"

// UserDTO is a struct that represents the public profile of a user
// ID is the identifier of the user
// Username is the username of the user
// Email is the email of the user
type UserDTO struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// ActionResult is the uniform answer of every account action
// Success tells whether the action committed its effects
// Message is the human readable outcome
// Code is the error code of a failed action
// User is the public profile, if the action produces one
type ActionResult struct {
	Success    bool     `json:"success"`
	Message    string   `json:"message"`
	Code       string   `json:"code,omitempty"`
	User       *UserDTO `json:"user,omitempty"`
	HttpStatus int      `json:"-"`
}

// CurrentUserDTO is a struct that represents the answer of the current user lookup
// User is null when the request carries no valid session
type CurrentUserDTO struct {
	User *UserDTO `json:"user"`
}

// TokenValidityDTO is a struct that represents a reset token check
type TokenValidityDTO struct {
	Valid bool `json:"valid"`
}

// PageDTO is a struct that represents the content of a marketing page
type PageDTO struct {
	Slug     string   `json:"slug"`
	Title    string   `json:"title"`
	Headline string   `json:"headline"`
	Sections []string `json:"sections"`
}

// ConsoleDTO is a struct that represents the landing data of the protected console
type ConsoleDTO struct {
	Greeting string   `json:"greeting"`
	User     *UserDTO `json:"user"`
}

type MetadataDTO struct {
	ApiVersion  string `json:"apiVersion"`
	ApiName     string `json:"apiName"`
	PullRequest string `json:"pullRequest,omitempty"`
}

// Succeeded builds a successful result with the given message and optional profile.
func Succeeded(message string, user *UserDTO) *ActionResult {
	return &ActionResult{
		Success:    true,
		Message:    message,
		User:       user,
		HttpStatus: http.StatusOK,
	}
}

// Failed builds a failed result from an entry of the error catalogue.
func Failed(customErr *CustomError) *ActionResult {
	return &ActionResult{
		Success:    false,
		Message:    customErr.Message,
		Code:       customErr.Code,
		HttpStatus: customErr.HttpStatus,
	}
}

// FailedValidation builds a failed result carrying the first failing field's message.
func FailedValidation(message string) *ActionResult {
	return &ActionResult{
		Success:    false,
		Message:    message,
		Code:       BadRequest.Code,
		HttpStatus: BadRequest.HttpStatus,
	}
}
