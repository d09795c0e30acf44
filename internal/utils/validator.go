package utils

import (
	"errors"
	"reflect"
	"regexp"
	"strings"
	"sync"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/jxiaof/next16-demo/internal/schemas"
	"github.com/microcosm-cc/bluemonday"
	"github.com/truemail-rb/truemail-go"
)

type Validator struct {
	Validate    *validator.Validate
	VerifyEmail func(email string) bool
	policy      *bluemonday.Policy
}

var (
	instance      *Validator
	instanceOnce  sync.Once
	configuration *truemail.Configuration
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

// maxBcryptPasswordBytes is the input limit of bcrypt.
const maxBcryptPasswordBytes = 72

// validationMessages maps "<StructField>.<tag>" and "<StructField>" to the message shown to the user.
var validationMessages = map[string]string{
	"Username.required":            "Username is required.",
	"Username.min":                 "Username must be at least 3 characters.",
	"Username.max":                 "Username must be at most 20 characters.",
	"Username.username_validation": "Username may only contain letters, digits and underscores.",

	"Email.required": "Email is required.",
	"Email":          "Please enter a valid email address.",

	"Password.required":            "Password is required.",
	"Password.min":                 "Password must be at least 8 characters.",
	"Password.max":                 "Password must be at most 72 characters.",
	"Password.bcrypt_length":       "Password must be at most 72 characters.",
	"Password.password_validation": "Password must contain at least one uppercase letter, one lowercase letter and one digit.",

	"NewPassword.required":            "Please enter a new password.",
	"NewPassword.min":                 "Password must be at least 8 characters.",
	"NewPassword.max":                 "Password must be at most 72 characters.",
	"NewPassword.bcrypt_length":       "Password must be at most 72 characters.",
	"NewPassword.password_validation": "Password must contain at least one uppercase letter, one lowercase letter and one digit.",

	"CurrentPassword": "Please enter your current password.",

	"ConfirmPassword.required": "Please confirm the password.",
	"ConfirmPassword.eqfield":  "The passwords do not match.",

	"Token": schemas.ResetTokenInvalid.Message,
}

func GetValidator() *Validator {
	instanceOnce.Do(func() {
		var err error
		configuration, err = truemail.NewConfiguration(truemail.ConfigurationAttr{
			VerifierEmail:         "noreply@next16-demo.dev",
			ValidationTypeDefault: "regex",
		})
		if err != nil {
			LogMessage("warn", "Email verifier not configured, falling back to syntax check only: "+err.Error())
			configuration = nil
		}

		instance = &Validator{
			Validate:    validator.New(validator.WithRequiredStructEnabled()),
			VerifyEmail: validateEmail,
			policy:      bluemonday.StrictPolicy(),
		}

		registerCustomValidators(instance)
	})

	return instance
}

// FirstError validates obj and returns the message of the first failing field, or "" if obj is valid.
func (v *Validator) FirstError(obj interface{}) string {
	err := v.Validate.Struct(obj)
	if err == nil {
		return ""
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) || len(validationErrors) == 0 {
		return schemas.BadRequest.Message
	}

	fieldErr := validationErrors[0]
	if message, ok := validationMessages[fieldErr.StructField()+"."+fieldErr.Tag()]; ok {
		return message
	}
	if message, ok := validationMessages[fieldErr.StructField()]; ok {
		return message
	}
	return schemas.BadRequest.Message
}

// SanitizeData cleans every string field by its sanitize tag. "strict" strips markup and
// surrounding whitespace, "trim" only whitespace. Emails use "trim" and rely on validation.
// Passwords are never tagged, they are hashed verbatim.
func (v *Validator) SanitizeData(obj interface{}) error {
	value := reflect.ValueOf(obj)
	if value.Kind() != reflect.Pointer || value.Elem().Kind() != reflect.Struct {
		return errors.New("sanitize target must be a pointer to a struct")
	}

	value = value.Elem()
	for i := 0; i < value.NumField(); i++ {
		field := value.Type().Field(i)
		if field.Type.Kind() != reflect.String {
			continue
		}

		fieldValue := value.Field(i)
		if !fieldValue.CanSet() {
			continue
		}

		switch field.Tag.Get("sanitize") {
		case "strict":
			fieldValue.SetString(strings.TrimSpace(v.policy.Sanitize(fieldValue.String())))
		case "trim":
			fieldValue.SetString(strings.TrimSpace(fieldValue.String()))
		}
	}

	return nil
}

func validateEmail(email string) bool {
	if configuration == nil {
		return true
	}
	return truemail.IsValid(email, configuration)
}

func registerCustomValidators(v *Validator) {
	err := v.Validate.RegisterValidation("username_validation", usernameValidation)
	if err != nil {
		return
	}

	err = v.Validate.RegisterValidation("bcrypt_length", bcryptLengthValidation)
	if err != nil {
		return
	}

	err = v.Validate.RegisterValidation("password_validation", passwordValidation)
	if err != nil {
		return
	}

	err = v.Validate.RegisterValidation("email_validation", func(fl validator.FieldLevel) bool {
		return v.VerifyEmail(fl.Field().String())
	})
	if err != nil {
		return
	}
}

func usernameValidation(fl validator.FieldLevel) bool {
	// Letters, digits and underscores only
	return usernamePattern.MatchString(fl.Field().String())
}

// bcryptLengthValidation bounds the UTF-8 encoding, the max tag only counts runes.
func bcryptLengthValidation(fl validator.FieldLevel) bool {
	return len(fl.Field().String()) <= maxBcryptPasswordBytes
}

func passwordValidation(fl validator.FieldLevel) bool {
	var upperLetter, lowerLetter, number bool

	value := fl.Field().String()
	for _, r := range value {
		switch {
		case unicode.IsUpper(r):
			upperLetter = true
		case unicode.IsLower(r):
			lowerLetter = true
		case unicode.IsNumber(r):
			number = true
		}
	}

	return upperLetter && lowerLetter && number
}
