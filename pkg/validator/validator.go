package validator

import (
	"errors"
	"net/http"
	"reflect"
	"regexp"
	"sort"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
	"github.com/labstack/echo/v4"
)

var (
	// Local or international number, spaces allowed between digit groups.
	phoneRegex = regexp.MustCompile(`^\+?[0-9][0-9 ]{4,18}[0-9]$`)
	// GSM sender ids: up to 11 alphanumerics, or a numeric id of up to 16 digits.
	alphaOriginatorRegex   = regexp.MustCompile(`^[A-Za-z0-9 ]{1,11}$`)
	numericOriginatorRegex = regexp.MustCompile(`^\+?[0-9]{1,16}$`)
)

// CustomValidator wraps the validator instance for Echo.
type CustomValidator struct {
	validator  *validator.Validate
	translator ut.Translator
}

func New() *CustomValidator {
	validate := validator.New()

	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		tag := field.Tag.Get("json")
		if tag == "" {
			return field.Name
		}

		name := strings.SplitN(tag, ",", 2)[0]
		if name == "-" || name == "" {
			return field.Name
		}

		return name
	})

	english := en.New()
	uni := ut.New(english, english)
	trans, _ := uni.GetTranslator("en")

	if err := enTranslations.RegisterDefaultTranslations(validate, trans); err != nil {
		panic("failed to register validator default translations: " + err.Error())
	}

	registerSMSRules(validate, trans)

	return &CustomValidator{
		validator:  validate,
		translator: trans,
	}
}

// registerSMSRules adds the "phone" and "originator" tags and their messages.
func registerSMSRules(validate *validator.Validate, trans ut.Translator) {
	rules := []struct {
		tag     string
		fn      validator.Func
		message string
	}{
		{"phone", isPhone, "{0} must be a phone number"},
		{"originator", isOriginator, "{0} must be up to 11 letters or digits, or a number of up to 16 digits"},
	}

	for _, rule := range rules {
		if err := validate.RegisterValidation(rule.tag, rule.fn); err != nil {
			panic("failed to register validation " + rule.tag + ": " + err.Error())
		}

		message := rule.message
		err := validate.RegisterTranslation(rule.tag, trans,
			func(ut ut.Translator) error {
				return ut.Add(rule.tag, message, true)
			},
			func(ut ut.Translator, fe validator.FieldError) string {
				t, _ := ut.T(fe.Tag(), fe.Field())
				return t
			},
		)
		if err != nil {
			panic("failed to register translation " + rule.tag + ": " + err.Error())
		}
	}
}

func isPhone(fl validator.FieldLevel) bool {
	return phoneRegex.MatchString(fl.Field().String())
}

func isOriginator(fl validator.FieldLevel) bool {
	v := fl.Field().String()
	return alphaOriginatorRegex.MatchString(v) || numericOriginatorRegex.MatchString(v)
}

func (cv *CustomValidator) Validate(i any) error {
	if err := cv.validator.Struct(i); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			return &ValidationError{
				Errors: cv.translateErrors(validationErrors),
			}
		}
		return err
	}
	return nil
}

func (cv *CustomValidator) translateErrors(errs validator.ValidationErrors) map[string]string {
	out := make(map[string]string, len(errs))
	for _, err := range errs {
		out[err.Field()] = err.Translate(cv.translator)
	}
	return out
}

type ValidationError struct {
	Errors map[string]string `json:"errors"`
}

// Error lists the failures sorted by field so the message is stable.
func (e *ValidationError) Error() string {
	fields := make([]string, 0, len(e.Errors))
	for field := range e.Errors {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	messages := make([]string, 0, len(fields))
	for _, field := range fields {
		messages = append(messages, field+": "+e.Errors[field])
	}
	return strings.Join(messages, "; ")
}

type ValidationErrorResponse struct {
	Success bool              `json:"success"`
	Error   string            `json:"error"`
	Details map[string]string `json:"details,omitempty"`
}

func HandleValidationError(c echo.Context, err error) error {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return c.JSON(http.StatusUnprocessableEntity, ValidationErrorResponse{
			Success: false,
			Error:   "Validation failed",
			Details: ve.Errors,
		})
	}
	return c.JSON(http.StatusBadRequest, ValidationErrorResponse{
		Success: false,
		Error:   err.Error(),
	})
}
