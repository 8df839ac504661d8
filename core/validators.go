package core

import (
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

var (
	fieldNameRegex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

	// custom validation tags & texts
	requiredTag     = "required"
	requiredText    = "{0} is required"
	apperConfTag    = "apper_conf"
	apperConfText   = "{0} is required when the store engine is apper"
	oneOfEngineTag  = "oneof"
	oneOfEngineText = "{0} must be one of [{1}]"
)

// NewTranslator returns the english translator used for validation messages.
func NewTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}

// InitValidators instantiates the validator for use.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = en_translations.RegisterDefaultTranslations(validate, translator)

	// Use JSON tag names for errors instead of Go struct names.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})

	// register custom validators
	validate.RegisterStructValidation(configStructValidation, Config{})
	RegisterCustomTranslation(validate, translator, apperConfTag, apperConfText)

	RegisterCustomTranslation(validate, translator, requiredTag, requiredText, true)
	RegisterCustomTranslation(validate, translator, oneOfEngineTag, oneOfEngineText, true)
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
			s, _ := t.T(tag, fe.Field(), fe.Param())
			return s
		},
	)
}

// ValidateConfig checks conf and returns a *ValidationError holding the translated field errors.
func ValidateConfig(conf *Config, validate *validator.Validate, translator ut.Translator) error {
	err := validate.Struct(conf)
	if err == nil {
		return nil
	}
	vErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	flds := make([]FieldError, 0, len(vErrs))
	for _, vErr := range vErrs {
		flds = append(flds, FieldError{Field: vErr.Namespace(), Error: vErr.Translate(translator)})
	}
	return NewValidationError(err, flds...)
}

// IsFieldName reports whether name is a valid record field name.
func IsFieldName(name string) bool {
	return fieldNameRegex.MatchString(name)
}

// Custom Struct Validators

// configStructValidation does Config's struct level validation
func configStructValidation(sl validator.StructLevel) {
	conf, ok := sl.Current().Interface().(Config)
	if !ok || conf.Store.Engine != StoreApper {
		return
	}
	// the hosted store needs its endpoint & credentials
	if conf.Store.ApperURL == "" {
		sl.ReportError(conf.Store.ApperURL, "Store.ApperURL", "ApperURL", apperConfTag, "")
	}
	if conf.Store.ApperProjectID == "" {
		sl.ReportError(conf.Store.ApperProjectID, "Store.ApperProjectID", "ApperProjectID", apperConfTag, "")
	}
	if conf.Store.ApperPublicKey == "" {
		sl.ReportError(conf.Store.ApperPublicKey, "Store.ApperPublicKey", "ApperPublicKey", apperConfTag, "")
	}
}
