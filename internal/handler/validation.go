package handler

import (
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"supercrm/internal/tax/gst"
)

var registerOnce sync.Once

// RegisterValidators teaches gin's validator about decimal amounts and the
// GST-specific tags used on request DTOs. Safe to call more than once.
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterCustomTypeFunc(decimalValue, decimal.Decimal{})
		_ = v.RegisterValidation("gst_rate", validGSTRate)
		_ = v.RegisterValidation("state_code", func(fl validator.FieldLevel) bool {
			return gst.ValidStateCode(fl.Field().String())
		})
		_ = v.RegisterValidation("gstin", func(fl validator.FieldLevel) bool {
			return gst.ValidGSTIN(strings.ToUpper(strings.TrimSpace(fl.Field().String())))
		})
		_ = v.RegisterValidation("pan", func(fl validator.FieldLevel) bool {
			return gst.ValidPAN(strings.ToUpper(strings.TrimSpace(fl.Field().String())))
		})
	})
}

// decimalValue lets numeric tags such as gt=0 compare decimal amounts.
func decimalValue(field reflect.Value) interface{} {
	if d, ok := field.Interface().(decimal.Decimal); ok {
		return d.InexactFloat64()
	}
	return nil
}

func validGSTRate(fl validator.FieldLevel) bool {
	if fl.Field().Kind() != reflect.Float64 {
		return false
	}
	return gst.ValidRate(decimal.NewFromFloat(fl.Field().Float()))
}
