package core

import (
	"reflect"
	"regexp"
	"strings"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

var (
	// custom validation tags & texts
	scheduleTag   = "schedule"
	scheduleText  = "schedule must look like 'Mon 14:00'"
	scheduleRegex = regexp.MustCompile(`^[A-Za-z]{3} ([01]\d|2[0-3]):[0-5]\d$`)

	monthKeyTag   = "monthkey"
	monthKeyText  = "must be a YYYY-MM month key"
	monthKeyRegex = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)

	requiredTag  = "required"
	requiredText = "this field is required"
)

// Validate and Translator are process-wide; InitValidators must run once at
// startup before any model validation.
var (
	Validate   *validator.Validate
	Translator ut.Translator
)

// InitValidators instantiates the validator for use.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = en_translations.RegisterDefaultTranslations(validate, translator)

	// Use JSON tag names for errors instead of Go struct names.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// register custom validators
	_ = validate.RegisterValidation(scheduleTag, scheduleValidation)
	RegisterCustomTranslation(validate, translator, scheduleTag, scheduleText)

	_ = validate.RegisterValidation(monthKeyTag, monthKeyValidation)
	RegisterCustomTranslation(validate, translator, monthKeyTag, monthKeyText)

	RegisterCustomTranslation(validate, translator, requiredTag, requiredText, true)

	Validate = validate
	Translator = translator
}

// RegisterCustomTranslation registers a custom translation for the specified validation tag.
func RegisterCustomTranslation(validate *validator.Validate, translator ut.Translator, tag, text string, override ...bool) {
	var ovrd bool
	if len(override) > 0 {
		ovrd = override[0]
	}
	_ = validate.RegisterTranslation(
		tag, translator,
		func(t ut.Translator) error { return t.Add(tag, text, ovrd) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(tag, fe.Field())
			return s
		},
	)
}

// Custom Global Validators

// scheduleValidation allows empty or a weekday+time lesson slot.
func scheduleValidation(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if s == "" {
		return true
	}
	return scheduleRegex.MatchString(s)
}

func monthKeyValidation(fl validator.FieldLevel) bool {
	return monthKeyRegex.MatchString(fl.Field().String())
}
