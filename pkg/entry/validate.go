package entry

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
)

// MaxDocumentSize is the largest stored document accepted for one entry.
const MaxDocumentSize = 1 << 20

// ValidationError is returned before any storage call when an entry cannot
// be saved.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// IsValidation reports whether err carries a ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
	trans        ut.Translator
)

func structValidator() (*validator.Validate, ut.Translator) {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		enLocale := en.New()
		trans, _ = ut.New(enLocale, enLocale).GetTranslator("en")
		if err := enTranslations.RegisterDefaultTranslations(validate, trans); err != nil {
			panic(fmt.Sprintf("entry: registering translations: %v", err))
		}
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return validate, trans
}

// ValidateKey checks the date and time keys.
func ValidateKey(date, t string) error {
	if _, err := time.Parse(LayoutDate, date); err != nil {
		return &ValidationError{Field: "date", Reason: fmt.Sprintf("%q is not YYYY-MM-DD", date)}
	}
	if _, err := time.Parse(LayoutTime, t); err != nil {
		return &ValidationError{Field: "time", Reason: fmt.Sprintf("%q is not HH:MM", t)}
	}
	return nil
}

// Validate checks that e can be saved: keys well formed, title and content
// present, at most MaxMedia images and a stored document no larger than
// MaxDocumentSize.
func Validate(e Entry) error {
	if err := ValidateKey(e.Date, e.Time); err != nil {
		return err
	}
	v, tr := structValidator()
	if err := v.Struct(e); err != nil {
		var fields validator.ValidationErrors
		if errors.As(err, &fields) && len(fields) > 0 {
			return fieldError(fields[0], tr)
		}
		return err
	}
	doc, err := Encode(e)
	if err != nil {
		return err
	}
	if len(doc) > MaxDocumentSize {
		return &ValidationError{
			Field:  "document",
			Reason: fmt.Sprintf("%d bytes exceeds the %d byte limit", len(doc), MaxDocumentSize),
		}
	}
	return nil
}

func fieldError(fe validator.FieldError, tr ut.Translator) *ValidationError {
	// Entry.media[0].dataURI reports as media.
	field := fe.Namespace()
	if _, rest, ok := strings.Cut(field, "."); ok {
		field = rest
	}
	if i := strings.IndexAny(field, "[."); i > 0 {
		field = field[:i]
	}
	return &ValidationError{Field: field, Reason: fe.Translate(tr)}
}
