// Package validator はリクエストの検証。transportに依存しない純粋関数で、
// 型付きの結果か *ValidationError を返す。
package validator

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"

	playground "github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// ValidationError は入力不備（フォームの項目に出すメッセージ）
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

func newValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// AsValidationError はエラーチェーンから取り出す
func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	ok := errors.As(err, &ve)
	return ve, ok
}

var validate = newValidator()

// 項目名はjsonタグを使う
func newValidator() *playground.Validate {
	v := playground.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		tag := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if tag == "" || tag == "-" {
			return f.Name
		}
		return tag
	})
	return v
}

// struct検証の最初のエラーをValidationErrorにする
func check(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var errs playground.ValidationErrors
	if errors.As(err, &errs) && len(errs) > 0 {
		fe := errs[0]
		return newValidationError(fe.Field(), fe.Field()+" "+message(fe))
	}
	return newValidationError("", err.Error())
}

func message(fe playground.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		if fe.Kind() == reflect.String {
			if fe.Param() == "1" {
				return "must not be empty"
			}
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "email":
		return "must be a valid email"
	}
	return "is invalid"
}

// 数値か数値文字列を整数として読む。未指定・nullは ok=false。負数は0に丸める。
func coerceNonNegativeInt(field string, raw json.RawMessage) (int, bool, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return 0, false, nil
	}

	var text string
	if raw[0] == '"' {
		if err := json.Unmarshal(raw, &text); err != nil {
			return 0, false, newValidationError(field, field+" must be an integer")
		}
		text = strings.TrimSpace(text)
		if text == "" {
			return 0, false, nil
		}
	} else {
		text = string(raw)
	}

	d, err := decimal.NewFromString(text)
	if err != nil || !d.IsInteger() {
		return 0, false, newValidationError(field, field+" must be an integer")
	}
	if !d.IsPositive() {
		return 0, true, nil
	}
	if d.GreaterThan(decimal.NewFromInt(math.MaxInt32)) {
		return 0, false, newValidationError(field, field+" is too large")
	}
	return int(d.IntPart()), true, nil
}

func trimPtr(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	return &t
}
