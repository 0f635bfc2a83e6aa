// Package validation checks registration and login payloads before any
// network or database access happens.
package validation

import (
	"errors"
	"reflect"
	"regexp"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

const (
	FieldName                 = "name"
	FieldEmail                = "email"
	FieldPassword             = "password"
	FieldPasswordConfirmation = "password_confirmation"
	FieldZipcode              = "zipcode"
	FieldCity                 = "city"
	FieldState                = "state"
)

// SpecialChars is the set a password must draw at least one character from.
const SpecialChars = "@$!%*?&"

const minPasswordLen = 8

var (
	zipcodePattern = regexp.MustCompile(`^\d{5}-?\d{3}$`)
	nonDigit       = regexp.MustCompile(`\D`)
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	mustRegister(v, "password_policy", func(fl validator.FieldLevel) bool {
		return CheckPassword(fl.Field().String()) == ""
	})
	mustRegister(v, "postal_code", func(fl validator.FieldLevel) bool {
		return zipcodePattern.MatchString(fl.Field().String())
	})
	mustRegister(v, "dotted_domain", func(fl validator.FieldLevel) bool {
		return hasDottedDomain(fl.Field().String())
	})
	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(err)
	}
}

// messages holds the user-facing text per field and failing tag.
var messages = map[string]map[string]string{
	FieldName: {
		"required": "name is required",
		"max":      "name must be at most 100 characters",
	},
	FieldEmail: {
		"required":      "email is required",
		"max":           "email is too long",
		"email":         "invalid email",
		"dotted_domain": "invalid email",
	},
	FieldPassword: {
		"required": "password is required",
		"min":      "password must be at least 8 characters",
	},
	FieldPasswordConfirmation: {
		"required": "password confirmation is required",
		"eqfield":  "passwords do not match",
	},
	FieldZipcode: {
		"required":    "postal code is required",
		"postal_code": "invalid postal code",
	},
	FieldCity: {
		"required": "city is required",
		"max":      "city is too long",
	},
	FieldState: {
		"required": "state is required",
		"len":      "invalid state, use a two-letter code (e.g. MG)",
		"alpha":    "invalid state, use a two-letter code (e.g. MG)",
	},
}

// FieldErrors maps a field name to a human-readable message.
type FieldErrors map[string]string

type RegistrationInput struct {
	Name                 string `json:"name"`
	Email                string `json:"email"`
	Password             string `json:"password"`
	PasswordConfirmation string `json:"password_confirmation"`
	Zipcode              string `json:"zipcode"`
	City                 string `json:"city"`
	State                string `json:"state"`
}

// registrationForm is the trimmed input the rules run against.
type registrationForm struct {
	Name                 string `json:"name" validate:"required,max=100"`
	Email                string `json:"email" validate:"required,max=254,email,dotted_domain"`
	Password             string `json:"password" validate:"required,min=8,password_policy"`
	PasswordConfirmation string `json:"password_confirmation" validate:"required,eqfield=Password"`
	Zipcode              string `json:"zipcode" validate:"required,postal_code"`
	City                 string `json:"city" validate:"required,max=80"`
	State                string `json:"state" validate:"required,len=2,alpha"`
}

// RegistrationPayload is the normalized result of a valid registration.
type RegistrationPayload struct {
	Name     string
	Email    string
	Password string
	Zipcode  string
	City     string
	State    string
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginForm struct {
	Email    string `json:"email" validate:"required,max=254,email,dotted_domain"`
	Password string `json:"password" validate:"required"`
}

type LoginPayload struct {
	Email    string
	Password string
}

// ValidateRegistration reports the first failing rule of every invalid
// field. A nil FieldErrors means the payload is valid.
func ValidateRegistration(in RegistrationInput) (RegistrationPayload, FieldErrors) {
	form := registrationForm{
		Name:                 strings.TrimSpace(in.Name),
		Email:                NormalizeEmail(in.Email),
		Password:             in.Password,
		PasswordConfirmation: in.PasswordConfirmation,
		Zipcode:              strings.TrimSpace(in.Zipcode),
		City:                 strings.TrimSpace(in.City),
		State:                strings.ToUpper(strings.TrimSpace(in.State)),
	}
	if errs := check(form); errs != nil {
		return RegistrationPayload{}, errs
	}
	return RegistrationPayload{
		Name:     form.Name,
		Email:    form.Email,
		Password: form.Password,
		Zipcode:  NormalizePostalCode(form.Zipcode),
		City:     form.City,
		State:    form.State,
	}, nil
}

// ValidateLogin only requires a well-formed email and a non-empty password.
func ValidateLogin(in LoginInput) (LoginPayload, FieldErrors) {
	form := loginForm{Email: NormalizeEmail(in.Email), Password: in.Password}
	if errs := check(form); errs != nil {
		return LoginPayload{}, errs
	}
	return LoginPayload{Email: form.Email, Password: form.Password}, nil
}

func check(form interface{}) FieldErrors {
	err := validate.Struct(form)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return FieldErrors{"": err.Error()}
	}
	errs := make(FieldErrors, len(verrs))
	for _, fe := range verrs {
		if _, seen := errs[fe.Field()]; !seen {
			errs[fe.Field()] = message(fe)
		}
	}
	return errs
}

func message(fe validator.FieldError) string {
	if fe.Tag() == "password_policy" {
		if s, ok := fe.Value().(string); ok {
			return CheckPassword(s)
		}
	}
	if msg, ok := messages[fe.Field()][fe.Tag()]; ok {
		return msg
	}
	return "invalid " + fe.Field()
}

// NormalizeEmail trims and lowercases. It is idempotent.
func NormalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// IsEmail applies the registration email rules to an already normalized
// address.
func IsEmail(s string) bool {
	return validate.Var(s, "required,max=254,email,dotted_domain") == nil
}

func hasDottedDomain(s string) bool {
	at := strings.LastIndexByte(s, '@')
	if at < 1 {
		return false
	}
	domain := s[at+1:]
	dot := strings.IndexByte(domain, '.')
	return dot > 0 && dot < len(domain)-1 && !strings.Contains(domain, "..")
}

// CheckPassword returns the first policy violation, or "" when the password
// is acceptable.
func CheckPassword(p string) string {
	if p == "" {
		return "password is required"
	}
	if len([]rune(p)) < minPasswordLen {
		return "password must be at least 8 characters"
	}
	var lower, upper, digit, special bool
	for _, r := range p {
		switch {
		case unicode.IsLower(r) && r < unicode.MaxASCII:
			lower = true
		case unicode.IsUpper(r) && r < unicode.MaxASCII:
			upper = true
		case unicode.IsDigit(r) && r < unicode.MaxASCII:
			digit = true
		case strings.ContainsRune(SpecialChars, r):
			special = true
		}
	}
	switch {
	case !lower:
		return "password must contain a lowercase letter"
	case !upper:
		return "password must contain an uppercase letter"
	case !digit:
		return "password must contain a number"
	case !special:
		return "password must contain a special character (" + SpecialChars + ")"
	}
	return ""
}

// IsPostalCodeInput reports whether raw, once trimmed, has the accepted
// shape: eight digits with an optional dash after the fifth.
func IsPostalCodeInput(raw string) bool {
	return validate.Var(strings.TrimSpace(raw), "required,postal_code") == nil
}

// NormalizePostalCode strips every non-digit character.
func NormalizePostalCode(s string) string {
	return nonDigit.ReplaceAllString(s, "")
}
