package auth

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// FieldErrors はフォーム項目ごとの入力エラーです。キーはフォームの name 属性です。
type FieldErrors map[string][]string

type signInForm struct {
	Email    string `form:"email" binding:"required,email"`
	Password string `form:"password" binding:"required"`
}

type signUpForm struct {
	Email    string `form:"email" binding:"required,email"`
	Password string `form:"password" binding:"required,min=8"`
}

// 項目名とタグの組み合わせごとのメッセージ
var fieldMessages = map[string]map[string]string{
	"email": {
		"required": "Type your email",
		"email":    "It must be a valid email",
	},
	"password": {
		"required": "Type your password",
		"min":      "Must be at least 8 characters long",
	},
}

// bindForm はフォームを読み取って検証します。
// 検証エラーは FieldErrors として返し、それ以外の読み取り失敗は error として返します。
func bindForm(c *gin.Context, dst any) (FieldErrors, error) {
	err := c.ShouldBind(dst)
	if err == nil {
		return nil, nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil, err
	}

	fields := FieldErrors{}
	for _, fe := range verrs {
		name := formName(fe.Field())
		msg, ok := fieldMessages[name][fe.Tag()]
		if !ok {
			msg = "Invalid value"
		}
		fields[name] = append(fields[name], msg)
	}
	return fields, nil
}

func formName(structField string) string {
	switch structField {
	case "Email":
		return "email"
	case "Password":
		return "password"
	default:
		return structField
	}
}
