package errorx

import "strings"

// CodeError 以狀態碼為主的錯誤, Error() 回傳狀態碼供 responsex 對應訊息
type CodeError struct {
	Code string
	Msg  string
}

func New(code string, msg ...string) error {
	return &CodeError{
		Code: code,
		Msg:  strings.Join(msg, ";"),
	}
}

func (e *CodeError) Error() string {
	return e.Code
}

func (e *CodeError) Message() string {
	return e.Msg
}

// Code 取出錯誤狀態碼, 非 CodeError 一律視為系統錯誤
func Code(err error, fallback string) string {
	if err == nil {
		return ""
	}
	if ce, ok := err.(*CodeError); ok {
		return ce.Code
	}
	return fallback
}
