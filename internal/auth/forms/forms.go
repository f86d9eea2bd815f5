// Package forms holds the typed request-input structs for the HTML surfaces
// and their tag-driven validation.
package forms

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/nkorchagin/datahub/internal/common/constants"
)

var validate = validator.New()

type SignupForm struct {
	Email       string `validate:"required,email,max=254"`
	Password    string `validate:"required,min=8,max=72"`
	Name        string `validate:"required,max=100"`
	Surname     string `validate:"required,max=100"`
	Affiliation string `validate:"max=100"`
	Orcid       string `validate:"omitempty,len=19"`
}

type LoginForm struct {
	Email    string `validate:"required,email,max=254"`
	Password string `validate:"required"`
}

type NotepadForm struct {
	Title string `validate:"required,max=200"`
	Body  string `validate:"max=20000"`
}

// FieldErrors maps lowercase field names to one human-readable message each.
type FieldErrors map[string]string

func ParseSignup(r *http.Request) (SignupForm, error) {
	if err := r.ParseForm(); err != nil {
		return SignupForm{}, err
	}
	return SignupForm{
		Email:       strings.TrimSpace(r.PostFormValue("email")),
		Password:    r.PostFormValue("password"),
		Name:        strings.TrimSpace(r.PostFormValue("name")),
		Surname:     strings.TrimSpace(r.PostFormValue("surname")),
		Affiliation: strings.TrimSpace(r.PostFormValue("affiliation")),
		Orcid:       strings.TrimSpace(r.PostFormValue("orcid")),
	}, nil
}

func ParseLogin(r *http.Request) (LoginForm, error) {
	if err := r.ParseForm(); err != nil {
		return LoginForm{}, err
	}
	return LoginForm{
		Email:    strings.TrimSpace(r.PostFormValue("email")),
		Password: r.PostFormValue("password"),
	}, nil
}

func ParseNotepad(r *http.Request) (NotepadForm, error) {
	if err := r.ParseForm(); err != nil {
		return NotepadForm{}, err
	}
	return NotepadForm{
		Title: strings.TrimSpace(r.PostFormValue("title")),
		Body:  r.PostFormValue("body"),
	}, nil
}

// CSRFField extracts the hidden csrf_token value from a parsed form.
func CSRFField(r *http.Request) string {
	return r.PostFormValue(constants.CSRFFieldName)
}

// Validate runs struct validation and flattens the result to per-field
// messages. A nil map means the form is valid.
func Validate(form any) FieldErrors {
	err := validate.Struct(form)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return FieldErrors{"form": "invalid submission"}
	}

	fieldErrors := make(FieldErrors, len(verrs))
	for _, fe := range verrs {
		field := strings.ToLower(fe.Field())
		if _, seen := fieldErrors[field]; !seen {
			fieldErrors[field] = message(fe)
		}
	}
	return fieldErrors
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required"
	case "email":
		return "Invalid email address"
	case "min":
		return fmt.Sprintf("Must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("Must be at most %s characters", fe.Param())
	case "len":
		return fmt.Sprintf("Must be exactly %s characters", fe.Param())
	default:
		return "Invalid value"
	}
}
