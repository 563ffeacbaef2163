package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/yazameet/yazameet-backend/errs"
	"github.com/yazameet/yazameet-backend/models"
)

const maxBodySize = 1 << 20

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()

	// Report json names so the field in an error matches the payload
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	enum := func(valid func(string) bool) validator.Func {
		return func(fl validator.FieldLevel) bool {
			return valid(fl.Field().String())
		}
	}
	_ = v.RegisterValidation("role", enum(func(s string) bool { return models.Role(s).Valid() }))
	_ = v.RegisterValidation("projecttype", enum(func(s string) bool { return models.ProjectType(s).Valid() }))
	_ = v.RegisterValidation("year", enum(func(s string) bool { return models.Year(s).Valid() }))
	_ = v.RegisterValidation("purpose", enum(func(s string) bool { return models.ContactPurpose(s).Valid() }))
	_ = v.RegisterValidation("decision", enum(func(s string) bool { return models.RequestStatus(s).Decided() }))
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	return v
}

// decodeAndValidate reads a JSON body of at most maxBodySize into dst and
// runs its validate tags.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any) error {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return errs.NewMaxBodySizeExceededError(maxBodySize)
		}
		return errs.NewBadRequestError("failed to read request body")
	}
	if len(body) == 0 {
		return errs.NewMalformedPayloadError("empty", nil)
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return errs.NewInvalidJSONError(err)
	}
	return validateStruct(dst)
}

func validateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) || len(validationErrs) == 0 {
		return errs.NewBadRequestError(err.Error())
	}

	fe := validationErrs[0]
	field := fe.Field()
	if i := strings.Index(field, "["); i > 0 {
		field = field[:i]
	}
	switch fe.Tag() {
	case "required", "notblank":
		return errs.NewMissingRequiredFieldError(field)
	case "min":
		return errs.NewInvalidFieldError(field, "at least "+fe.Param()+" required")
	case "max":
		return errs.NewInvalidFieldError(field, "at most "+fe.Param()+" allowed")
	case "role", "projecttype", "year", "purpose", "decision":
		return errs.NewInvalidFieldError(field, "unknown value "+strconv.Quote(fmt.Sprint(fe.Value())))
	default:
		return errs.NewInvalidFieldError(field, "failed "+fe.Tag()+" validation")
	}
}

func uintParam(r *http.Request, name string) (uint, error) {
	raw := chi.URLParam(r, name)
	if raw == "" {
		return 0, errs.NewMissingRequiredFieldError(name)
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, errs.NewInvalidFieldError(name, "must be a positive integer")
	}
	return uint(id), nil
}

func uuidParam(r *http.Request, name string) (uuid.UUID, error) {
	raw := chi.URLParam(r, name)
	if raw == "" {
		return uuid.Nil, errs.NewMissingRequiredFieldError(name)
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, errs.NewInvalidFieldError(name, "must be a uuid")
	}
	return id, nil
}

// queryList splits a comma separated query value, dropping blanks.
func queryList(r *http.Request, name string) []string {
	var values []string
	for _, raw := range r.URL.Query()[name] {
		for _, part := range strings.Split(raw, ",") {
			if part = strings.TrimSpace(part); part != "" {
				values = append(values, part)
			}
		}
	}
	return values
}
