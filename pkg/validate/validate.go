// Package validate configures the request validator shared by every gin
// binding and turns validation failures into per-field messages.
package validate

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

// Child age bounds accepted by the registration form.
const (
	MinChildAge = 5
	MaxChildAge = 18
)

// Weekdays in display order.
var Weekdays = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

var (
	// custom validation tags & texts
	childAgeTag  = "child_age"
	childAgeText = fmt.Sprintf("{0} must be a whole number between %d and %d", MinChildAge, MaxChildAge)

	acceptedTag  = "accepted"
	acceptedText = "{0} must be accepted"

	clockTag   = "clock"
	clockText  = "{0} must be a time in HH:MM format"
	clockRegex = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

	// plain digits, no sign or leading zero
	childAgeRegex = regexp.MustCompile(`^[1-9][0-9]?$`)

	weekdayTag  = "weekday"
	weekdayText = "{0} must be a day of the week (Monday to Sunday)"

	monthYearTag  = "month_year"
	monthYearText = "{0} must be a month in YYYY-MM format"

	requiredTag  = "required"
	requiredText = "{0} is required"
)

var (
	once       sync.Once
	initErr    error
	translator ut.Translator
)

// Init registers the custom tags, English translations and JSON field names
// on gin's validator engine. Safe to call more than once.
func Init() error {
	once.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			initErr = errors.New("validate: unexpected gin validator engine")
			return
		}
		initErr = register(v)
	})
	return initErr
}

func register(v *validator.Validate) error {
	english := en.New()
	uni := ut.New(english, english)
	translator, _ = uni.GetTranslator("en")

	if err := en_translations.RegisterDefaultTranslations(v, translator); err != nil {
		return fmt.Errorf("register default translations: %w", err)
	}

	// Use JSON tag names for errors instead of Go struct names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			name = strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		}
		return name
	})

	custom := []struct {
		tag  string
		fn   validator.Func
		text string
	}{
		{childAgeTag, childAgeValidation, childAgeText},
		{acceptedTag, acceptedValidation, acceptedText},
		{clockTag, clockValidation, clockText},
		{weekdayTag, weekdayValidation, weekdayText},
		{monthYearTag, monthYearValidation, monthYearText},
	}
	for _, c := range custom {
		if err := v.RegisterValidation(c.tag, c.fn); err != nil {
			return fmt.Errorf("register %s: %w", c.tag, err)
		}
		registerCustomTranslation(v, c.tag, c.text)
	}
	registerCustomTranslation(v, requiredTag, requiredText, true)
	return nil
}

// registerCustomTranslation registers a custom translation for the specified validation tag.
func registerCustomTranslation(v *validator.Validate, tag, text string, override ...bool) {
	var ovrd bool
	if len(override) > 0 {
		ovrd = override[0]
	}
	_ = v.RegisterTranslation(
		tag, translator,
		func(t ut.Translator) error { return t.Add(tag, text, ovrd) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(tag, fe.Field())
			return s
		},
	)
}

// Fields converts a binding error into a field -> message map keyed by the
// JSON field name. ok is false when err is not a validation failure (for
// example malformed JSON).
func Fields(err error) (fields map[string]string, ok bool) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil, false
	}
	fields = make(map[string]string, len(verrs))
	for _, fe := range verrs {
		key := fieldKey(fe)
		if _, seen := fields[key]; seen {
			continue
		}
		if translator != nil {
			fields[key] = fe.Translate(translator)
		} else {
			fields[key] = fe.Error()
		}
	}
	return fields, true
}

// fieldKey drops the struct name from the namespace: "CreateRegistrationRequest.days[0]" -> "days[0]".
func fieldKey(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

// ── Custom validators ──

func childAgeValidation(fl validator.FieldLevel) bool {
	return IsValidChildAge(fl.Field().String())
}

// IsValidChildAge reports whether s is a whole number of years within the
// accepted age range. Surrounding spaces are ignored.
func IsValidChildAge(s string) bool {
	s = strings.TrimSpace(s)
	if !childAgeRegex.MatchString(s) {
		return false
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return false
	}
	return n >= MinChildAge && n <= MaxChildAge
}

func acceptedValidation(fl validator.FieldLevel) bool {
	f := fl.Field()
	if f.Kind() == reflect.Ptr {
		if f.IsNil() {
			return false
		}
		f = f.Elem()
	}
	return f.Kind() == reflect.Bool && f.Bool()
}

func clockValidation(fl validator.FieldLevel) bool {
	return IsClock(fl.Field().String())
}

// IsClock reports whether s is a 24h "HH:MM" time.
func IsClock(s string) bool {
	return clockRegex.MatchString(s)
}

func weekdayValidation(fl validator.FieldLevel) bool {
	return IsWeekday(fl.Field().String())
}

// IsWeekday reports whether s is a full English weekday name.
func IsWeekday(s string) bool {
	for _, d := range Weekdays {
		if s == d {
			return true
		}
	}
	return false
}

func monthYearValidation(fl validator.FieldLevel) bool {
	return IsMonthYear(fl.Field().String())
}

// IsMonthYear reports whether s is a "YYYY-MM" month.
func IsMonthYear(s string) bool {
	if len(s) != 7 {
		return false
	}
	_, err := time.Parse("2006-01", s)
	return err == nil
}
