package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
	"github.com/spf13/cast"
)

// FormValidator checks drafts against a FormSchema and renders English messages.
type FormValidator struct {
	validate   *validator.Validate
	translator ut.Translator
}

// NewFormValidator builds a validator with the English translations registered.
func NewFormValidator() *FormValidator {
	validate := validator.New()
	locale := en.New()
	uni := ut.New(locale, locale)
	translator, _ := uni.GetTranslator("en")
	_ = enTranslations.RegisterDefaultTranslations(validate, translator)
	return &FormValidator{validate: validate, translator: translator}
}

// Normalize turns raw draft values into the trimmed text form every rule is
// written against. Fields missing from values become empty.
func (v *FormValidator) Normalize(schema FormSchema, values map[string]interface{}) map[string]interface{} {
	normalized := make(map[string]interface{}, len(schema.Fields))
	for _, field := range schema.Fields {
		normalized[field.Name] = strings.TrimSpace(cast.ToString(values[field.Name]))
	}
	return normalized
}

// Validate returns one message per invalid field, keyed by field name.
func (v *FormValidator) Validate(ctx context.Context, schema FormSchema, values map[string]interface{}) map[string]string {
	normalized := v.Normalize(schema, values)
	rules := make(map[string]interface{}, len(schema.Fields))
	labels := make(map[string]string, len(schema.Fields))
	for _, field := range schema.Fields {
		if field.Rules == "" {
			continue
		}
		rules[field.Name] = field.Rules
		labels[field.Name] = field.Label
	}

	failures := v.validate.ValidateMapCtx(ctx, normalized, rules)
	if len(failures) == 0 {
		return nil
	}

	messages := make(map[string]string, len(failures))
	for name, failure := range failures {
		err, ok := failure.(error)
		if !ok {
			continue
		}
		messages[name] = v.message(labels[name], err)
	}
	return messages
}

func (v *FormValidator) message(label string, err error) string {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return label + " is invalid"
	}
	// Map validation reports no field name, so the translated text starts after the placeholder.
	text := strings.TrimSpace(fieldErrs[0].Translate(v.translator))
	if text == "" {
		text = "is invalid"
	}
	return label + " " + text
}
