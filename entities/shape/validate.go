package shape

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// shapeValidate checks the struct tags on every variant. Field names in its
// errors are the json keys.
var shapeValidate *validator.Validate

func init() {
	shapeValidate = validator.New()
	_ = shapeValidate.RegisterValidation("finite", validateFinite)
	shapeValidate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
}

func validateFinite(fl validator.FieldLevel) bool {
	switch fl.Field().Kind() {
	case reflect.Float32, reflect.Float64:
		return isFinite(fl.Field().Float())
	}
	return false
}

// Validate checks the numeric and enum invariants of g. Geometries built in
// code by the tool layer must pass it before they are added to a document.
func Validate(g Geometry) error {
	if g == nil || reflect.ValueOf(g).IsNil() {
		return &FieldError{Field: "type", Reason: "missing shape geometry"}
	}

	err := shapeValidate.Struct(g)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return &FieldError{Kind: g.Kind(), Field: fe.Field(), Reason: describe(fe)}
	}
	return fmt.Errorf("validate %s: %w", g.Kind(), err)
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "finite":
		return "must be a finite number"
	case "gt":
		return "must be greater than " + fe.Param()
	case "oneof":
		return "must be one of " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "required":
		return "is required"
	}
	return "failed " + fe.Tag()
}
