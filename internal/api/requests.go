package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"net/url"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

const maxFormMemory = 1 << 20

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	return v
}

// CreateUserRequest is the payload for POST /api/users.
type CreateUserRequest struct {
	Username string `json:"username" validate:"notblank"`
}

// Validate ensures request correctness.
func (r CreateUserRequest) Validate() error {
	return validationError(validate.Struct(r))
}

func (r *CreateUserRequest) fromForm(form url.Values) {
	r.Username = form.Get("username")
}

// AddExerciseRequest is the payload for POST /api/users/{_id}/exercises. Duration
// accepts a JSON number or a numeric string.
type AddExerciseRequest struct {
	Description string      `json:"description" validate:"notblank"`
	Duration    json.Number `json:"duration" validate:"notblank"`
	Date        string      `json:"date"`
}

// Validate ensures request correctness.
func (r AddExerciseRequest) Validate() error {
	return validationError(validate.Struct(r))
}

func (r *AddExerciseRequest) fromForm(form url.Values) {
	r.Description = form.Get("description")
	r.Duration = json.Number(strings.TrimSpace(form.Get("duration")))
	r.Date = form.Get("date")
}

type formRequest interface {
	fromForm(url.Values)
}

// decodeBody fills dst from a JSON body or from url-encoded/multipart form fields.
// JSON bodies are capped at maxFormMemory.
func decodeBody(w http.ResponseWriter, r *http.Request, dst formRequest) error {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		return json.NewDecoder(http.MaxBytesReader(w, r.Body, maxFormMemory)).Decode(dst)
	}

	if err := r.ParseMultipartForm(maxFormMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return err
	}
	dst.fromForm(r.PostForm)
	return nil
}

func validationError(err error) error {
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		return fmt.Errorf("%s is required", fieldErrs[0].Field())
	}
	return err
}
