package usecase

import (
	"errors"
	"fmt"
	"net/http"

	"restaurant/internal/validator"
)

// HTTPError はusecase→handlerに渡す唯一のエラー型
type HTTPError struct {
	Status  int
	Message string
	// 入力不備のときの項目名
	Field string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

func NewHTTPError(status int, message string) error {
	return &HTTPError{
		Status:  status,
		Message: message,
	}
}

// NewFieldError は400で項目名つき
func NewFieldError(field, message string) error {
	return &HTTPError{
		Status:  http.StatusBadRequest,
		Message: message,
		Field:   field,
	}
}

func AsHTTPError(err error) (*HTTPError, bool) {
	var he *HTTPError
	ok := errors.As(err, &he)
	return he, ok
}

// validatorのエラーを400に変える。それ以外はそのまま返す
func fromValidation(err error) error {
	if ve, ok := validator.AsValidationError(err); ok {
		return NewFieldError(ve.Field, ve.Message)
	}
	return err
}
