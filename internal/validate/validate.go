// Package validate checks search requests at the CLI and HTTP boundary using
// struct tags, with English messages keyed by json field names.
package validate

import (
	"errors"
	"math"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

// Validator holds a validator and its translator.
type Validator struct {
	v     *validator.Validate
	trans ut.Translator
}

var (
	once sync.Once
	svc  *Validator
)

// Get returns the shared validator, initializing it on first use.
func Get() *Validator {
	once.Do(func() {
		enLoc := en.New()
		uni := ut.New(enLoc, enLoc)
		trans, _ := uni.GetTranslator("en")

		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			tag := fld.Tag.Get("json")
			if idx := strings.Index(tag, ","); idx >= 0 {
				tag = tag[:idx]
			}
			if tag == "" || tag == "-" {
				return fld.Name
			}
			return tag
		})
		_ = en_translations.RegisterDefaultTranslations(v, trans)

		_ = v.RegisterValidation("finite", func(fl validator.FieldLevel) bool {
			f := fl.Field().Float()
			return !math.IsNaN(f) && !math.IsInf(f, 0)
		})
		_ = v.RegisterTranslation("finite", trans,
			func(ut ut.Translator) error {
				return ut.Add("finite", "{0} must be a finite number", true)
			},
			func(ut ut.Translator, fe validator.FieldError) string {
				t, _ := ut.T("finite", fe.Field())
				return t
			},
		)

		svc = &Validator{v: v, trans: trans}
	})
	return svc
}

// Struct validates s and returns one error joining every field message, or nil.
func (v *Validator) Struct(s any) error {
	err := v.v.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fe.Translate(v.trans))
	}
	return errors.New(strings.Join(msgs, "; "))
}

// Struct validates s with the shared validator.
func Struct(s any) error {
	return Get().Struct(s)
}
