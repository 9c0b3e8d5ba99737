// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package auth

import (
	"errors"

	"localgame/internal/access"
	"localgame/internal/content"
)

// ErrDelivery classifies failures to send a verification email.
var ErrDelivery = errors.New("email delivery failed")

// Error is an auth flow failure with a message safe to show the client.
// Kind is one of the shared sentinel errors and decides the HTTP status.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string { return e.Message }
func (e *Error) Unwrap() error { return e.Kind }

var (
	ErrInvalidEmail    = &Error{Kind: content.ErrValidation, Message: "邮箱格式不正确"}
	ErrEmailTaken      = &Error{Kind: content.ErrConflict, Message: "该邮箱已注册"}
	ErrNotRegistered   = &Error{Kind: content.ErrNotFound, Message: "该邮箱未注册"}
	ErrBadCode         = &Error{Kind: content.ErrValidation, Message: "验证码错误或已过期"}
	ErrWeakPassword    = &Error{Kind: content.ErrValidation, Message: "密码至少需要8位字符"}
	ErrBadCredentials  = &Error{Kind: access.ErrUnauthorized, Message: "邮箱或密码错误"}
	ErrAdminCodeOnly   = &Error{Kind: access.ErrForbidden, Message: "管理员只能使用验证码登录"}
	ErrAdminNoPassword = &Error{Kind: access.ErrForbidden, Message: "管理员不能设置密码，只能使用验证码登录"}
	ErrDisabled        = &Error{Kind: access.ErrForbidden, Message: "账户已被禁用"}
	ErrUsernameEmpty   = &Error{Kind: content.ErrValidation, Message: "昵称不能为空"}
	ErrUsernameShort   = &Error{Kind: content.ErrValidation, Message: "昵称至少需要2个字符"}
	ErrSendFailed      = &Error{Kind: ErrDelivery, Message: "邮件发送失败，请稍后重试"}
)
