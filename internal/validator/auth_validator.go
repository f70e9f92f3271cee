package validator

import "strings"

// 会員登録・ログインの入力
type AuthRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerFields struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type loginFields struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// サインアップの入力を検証（emailは小文字にそろえる）
func ValidateRegister(in AuthRequest) (AuthRequest, error) {
	f := registerFields{Email: normalizeEmail(in.Email), Password: in.Password}
	if err := check(f); err != nil {
		return AuthRequest{}, err
	}
	return AuthRequest{Email: f.Email, Password: f.Password}, nil
}

// ログインの入力を検証
func ValidateLogin(in AuthRequest) (AuthRequest, error) {
	f := loginFields{Email: normalizeEmail(in.Email), Password: in.Password}
	if err := check(f); err != nil {
		return AuthRequest{}, err
	}
	return AuthRequest{Email: f.Email, Password: f.Password}, nil
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
