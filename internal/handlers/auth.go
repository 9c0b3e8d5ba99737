// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/http"

	"localgame/internal/auth"
	"localgame/internal/middleware"
	"localgame/internal/models"
)

const codeSentMessage = "验证码已发送，请查收邮件（5分钟内有效）"

// Auth groups all authentication-related HTTP handlers.
type Auth struct {
	svc *auth.Service
}

// NewAuth creates a new Auth handler group.
func NewAuth(svc *auth.Service) *Auth {
	return &Auth{svc: svc}
}

type emailRequest struct {
	Email string `json:"email"`
}

type registerRequest struct {
	Email    string `json:"email"`
	Code     string `json:"code"`
	Password string `json:"password"`
	Username string `json:"username"`
}

type passwordLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type codeLoginRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

type changePasswordRequest struct {
	Email       string `json:"email"`
	Code        string `json:"code"`
	NewPassword string `json:"new_password"`
}

type changeUsernameRequest struct {
	Username string `json:"username"`
}

type tokenResponse struct {
	AccessToken string            `json:"access_token"`
	TokenType   string            `json:"token_type"`
	User        models.PublicUser `json:"user"`
}

func writeToken(w http.ResponseWriter, res *auth.Result) {
	writeJSON(w, http.StatusOK, tokenResponse{
		AccessToken: res.Token,
		TokenType:   "bearer",
		User:        res.User.Public(),
	})
}

var accountText = errText{notFound: "用户不存在", forbidden: "权限不足"}

// SendRegistrationCode emails a registration code.
func (a *Auth) SendRegistrationCode(w http.ResponseWriter, r *http.Request) {
	var req emailRequest
	if !readJSON(w, r, &req) {
		return
	}
	if err := a.svc.SendRegistrationCode(r.Context(), req.Email); err != nil {
		writeError(w, r, err, accountText)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": codeSentMessage})
}

// Register creates the account and signs it in.
func (a *Auth) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !readJSON(w, r, &req) {
		return
	}
	if msg := validateAccount(req.Username, req.Password); msg != "" {
		writeDetail(w, http.StatusBadRequest, msg)
		return
	}
	res, err := a.svc.Register(r.Context(), req.Email, req.Code, req.Password, req.Username)
	if err != nil {
		writeError(w, r, err, accountText)
		return
	}
	writeToken(w, res)
}

// LoginPassword signs in with email and password.
func (a *Auth) LoginPassword(w http.ResponseWriter, r *http.Request) {
	var req passwordLoginRequest
	if !readJSON(w, r, &req) {
		return
	}
	res, err := a.svc.LoginPassword(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, r, err, accountText)
		return
	}
	writeToken(w, res)
}

// SendLoginCode emails a login code.
func (a *Auth) SendLoginCode(w http.ResponseWriter, r *http.Request) {
	var req emailRequest
	if !readJSON(w, r, &req) {
		return
	}
	if err := a.svc.SendLoginCode(r.Context(), req.Email); err != nil {
		writeError(w, r, err, accountText)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": codeSentMessage})
}

// LoginCode signs in with an emailed code.
func (a *Auth) LoginCode(w http.ResponseWriter, r *http.Request) {
	var req codeLoginRequest
	if !readJSON(w, r, &req) {
		return
	}
	res, err := a.svc.LoginCode(r.Context(), req.Email, req.Code)
	if err != nil {
		writeError(w, r, err, accountText)
		return
	}
	writeToken(w, res)
}

// Verify reports the identity behind the bearer token.
func (a *Auth) Verify(w http.ResponseWriter, r *http.Request) {
	c := middleware.CallerFromCtx(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{
		"valid": true,
		"user": models.PublicUser{
			ID:       c.UserID,
			Email:    c.Email,
			Username: c.Username,
			Role:     c.Role,
		},
	})
}

// ChangePassword sets a new password after checking an emailed code.
func (a *Auth) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req changePasswordRequest
	if !readJSON(w, r, &req) {
		return
	}
	if msg := validateAccount("", req.NewPassword); msg != "" {
		writeDetail(w, http.StatusBadRequest, msg)
		return
	}
	if err := a.svc.ChangePassword(r.Context(), req.Email, req.Code, req.NewPassword); err != nil {
		writeError(w, r, err, accountText)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "密码修改成功"})
}

// ChangeUsername updates the caller's display name.
func (a *Auth) ChangeUsername(w http.ResponseWriter, r *http.Request) {
	var req changeUsernameRequest
	if !readJSON(w, r, &req) {
		return
	}
	if msg := validateAccount(req.Username, ""); msg != "" {
		writeDetail(w, http.StatusBadRequest, msg)
		return
	}
	user, err := a.svc.ChangeUsername(r.Context(), middleware.CallerFromCtx(r.Context()), req.Username)
	if err != nil {
		writeError(w, r, err, accountText)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "昵称修改成功",
		"user":    user.Public(),
	})
}

// DeleteAccount removes the caller's account and all of its files.
func (a *Auth) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	if err := a.svc.DeleteAccount(r.Context(), middleware.CallerFromCtx(r.Context())); err != nil {
		writeError(w, r, err, accountText)
		return
	}
	if err := a.svc.Logout(r.Context(), middleware.TokenFromCtx(r.Context())); err != nil {
		writeError(w, r, err, accountText)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "账户已删除"})
}

// Logout destroys the caller's session.
func (a *Auth) Logout(w http.ResponseWriter, r *http.Request) {
	if err := a.svc.Logout(r.Context(), middleware.TokenFromCtx(r.Context())); err != nil {
		writeError(w, r, err, accountText)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "已退出登录"})
}
