package validators

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	pkgerrors "github.com/chirpy-dev/chirpy-backend/pkg/errors"
)

const maxBodyBytes = 64 << 10

var (
	validate   = newValidator()
	pushKeyRe  = regexp.MustCompile(`^[A-Za-z0-9_-]+={0,2}$`)
	errTooBig  = fmt.Errorf("request body exceeds %d bytes", maxBodyBytes)
	errNoBody  = errors.New("request body required")
	errTrailer = errors.New("request body must contain a single JSON object")
)

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		tag := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if tag == "" || tag == "-" {
			return f.Name
		}
		return tag
	})
	_ = v.RegisterValidation("push_endpoint", func(fl validator.FieldLevel) bool {
		return isPushEndpoint(fl.Field().String())
	})
	_ = v.RegisterValidation("push_key", func(fl validator.FieldLevel) bool {
		return pushKeyRe.MatchString(fl.Field().String())
	})
	return v
}

// isPushEndpoint accepts absolute https URLs without credentials, which is
// what browsers hand out from PushManager.subscribe.
func isPushEndpoint(raw string) bool {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return false
	}
	return u.Scheme == "https" && u.Host != "" && u.User == nil
}

// DecodeJSONBody strictly decodes a single JSON object from the request body
// and runs struct validation. Unknown fields are rejected.
func DecodeJSONBody(r *http.Request, dest any) error {
	if r.Body == nil || r.Body == http.NoBody {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, errNoBody, "invalid request body")
	}
	defer func() {
		_, _ = io.Copy(io.Discard, io.LimitReader(r.Body, maxBodyBytes))
	}()

	limited := &io.LimitedReader{R: r.Body, N: maxBodyBytes + 1}
	decoder := json.NewDecoder(limited)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dest); err != nil {
		switch {
		case limited.N <= 0:
			err = errTooBig
		case errors.Is(err, io.EOF):
			err = errNoBody
		}
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid request body").WithDetails(map[string]any{"error": err.Error()})
	}
	if decoder.More() {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, errTrailer, "invalid request body")
	}
	if err := validate.Struct(dest); err != nil {
		return formatValidationErrors(err)
	}
	return nil
}

func formatValidationErrors(err error) *pkgerrors.Error {
	var errs validator.ValidationErrors
	if errors.As(err, &errs) {
		details := map[string]string{}
		for _, fieldErr := range errs {
			details[fieldPath(fieldErr)] = validationMessage(fieldErr)
		}
		return pkgerrors.New(pkgerrors.CodeValidation, "validation failed").WithDetails(details)
	}
	return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "validation failed")
}

// fieldPath drops the root struct name: "subscription.keys.auth".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return fe.Field()
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "email":
		return "must be a valid email"
	case "url", "push_endpoint":
		return "must be a valid https url"
	case "push_key":
		return "must be base64url encoded"
	}
	return "is invalid"
}
