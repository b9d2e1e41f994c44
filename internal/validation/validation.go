// Package validation checks product input against the catalog field rules.
package validation

import (
	"reflect"
	"strings"
	"unicode/utf8"

	catalogerrors "github.com/abgdnv/catalog/internal/errors"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// CodeLength is the exact number of characters a product code must have.
const CodeLength = 10

// ProductInput is the client-supplied product payload. Nil pointers mean the field was absent.
type ProductInput struct {
	Code        string           `json:"code"        validate:"required,code_len"`
	Name        string           `json:"name"        validate:"required"`
	PriceSource *decimal.Decimal `json:"priceHrk"    validate:"required,decimal_gte0"`
	Description *string          `json:"description"`
	IsAvailable *bool            `json:"isAvailable" validate:"required"`
}

// Outcome lists validation failures in field order. An empty Outcome means the input is valid.
type Outcome []string

// Valid reports whether no rule failed.
func (o Outcome) Valid() bool {
	return len(o) == 0
}

// Message joins the failures with "; ".
func (o Outcome) Message() string {
	return strings.Join(o, "; ")
}

// messages maps a failing field and tag to the message reported for it.
var messages = map[string]map[string]string{
	"Code": {
		"required": "code field is empty",
		"code_len": "code field is not of length 10",
	},
	"Name": {
		"required": "name field is empty",
	},
	"PriceSource": {
		"required":     "priceHrk field is empty",
		"decimal_gte0": "priceHrk field must be greater or equal to 0",
	},
	"IsAvailable": {
		"required": "isAvailable field is empty",
	},
}

// Engine evaluates ProductInput against the field rules.
type Engine struct {
	validate *validator.Validate
}

// NewEngine creates an Engine with the custom product rules registered.
func NewEngine() *Engine {
	v := validator.New()
	_ = v.RegisterValidation("code_len", func(fl validator.FieldLevel) bool {
		return utf8.RuneCountInString(fl.Field().String()) == CodeLength
	})
	// decimals are validated through their string form
	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			return d.String()
		}
		return nil
	}, decimal.Decimal{})
	_ = v.RegisterValidation("decimal_gte0", func(fl validator.FieldLevel) bool {
		d, err := decimal.NewFromString(fl.Field().String())
		return err == nil && !d.IsNegative()
	})
	return &Engine{validate: v}
}

// Validate applies every rule to input and returns all failures. Code length is only checked
// for a non-empty code and the price sign only for a present price.
// A nil input yields ErrNilInput.
func (e *Engine) Validate(input *ProductInput) (Outcome, error) {
	if input == nil {
		return nil, catalogerrors.ErrNilInput
	}
	err := e.validate.Struct(input)
	if err == nil {
		return Outcome{}, nil
	}
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return nil, err
	}

	failed := make(map[string]string, len(validationErrors))
	for _, fe := range validationErrors {
		if msg, known := messages[fe.StructField()][fe.Tag()]; known {
			failed[fe.StructField()] = msg
		}
	}

	outcome := Outcome{}
	t := reflect.TypeOf(*input)
	for i := range t.NumField() {
		if msg, ok := failed[t.Field(i).Name]; ok {
			outcome = append(outcome, msg)
		}
	}
	return outcome, nil
}
