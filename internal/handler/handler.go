package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"reflect"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	customError "github.com/segyhp/carloan-engine/pkg/errors"
	"github.com/segyhp/carloan-engine/pkg/response"
)

// newValidator returns a validator that compares decimal.Decimal fields as numbers.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
	return v
}

// decode reads a JSON body into dst and validates it.
func decode(r *http.Request, v *validator.Validate, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return customError.WrapInvalidRequest(err)
	}
	if err := v.Struct(dst); err != nil {
		return customError.WrapInvalidRequest(err)
	}
	return nil
}

func statusFor(code string) int {
	switch code {
	case customError.ErrCodeInvalidTerms, customError.ErrCodeInvalidPayment, customError.ErrCodeInvalidRequest:
		return http.StatusBadRequest
	case customError.ErrCodeLoanNotFound, customError.ErrCodeVehicleNotFound:
		return http.StatusNotFound
	case customError.ErrCodeLoanAlreadyExists, customError.ErrCodeVehicleAlreadyExists,
		customError.ErrCodeLoanClosed, customError.ErrCodeLoanBusy:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// writeError maps a service error to its HTTP status. Validation details are
// echoed back; storage failures are not.
func writeError(w http.ResponseWriter, err error) {
	var be *customError.BusinessError
	if !errors.As(err, &be) {
		response.InternalServerError(w, "Internal server error", nil)
		return
	}

	message := be.Message
	if be.Code == customError.ErrCodeInvalidRequest && be.Err != nil {
		message = be.Err.Error()
	}
	response.CodedError(w, statusFor(be.Code), be.Code, message)
}
