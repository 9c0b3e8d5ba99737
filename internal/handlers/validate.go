// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"fmt"
	"unicode/utf8"
)

// Validation limits for user-supplied text fields.
const (
	maxTitleLen    = 200
	maxBodyLen     = 100_000
	maxKeywordLen  = 100
	maxUsernameLen = 50
	maxPasswordLen = 128
)

// validateText checks the optional title and body of a game or notice and
// returns the first error found. Emptiness is checked by the services.
func validateText(title, body string) string {
	if utf8.RuneCountInString(title) > maxTitleLen {
		return fmt.Sprintf("标题不能超过%d个字符", maxTitleLen)
	}
	if utf8.RuneCountInString(body) > maxBodyLen {
		return fmt.Sprintf("内容不能超过%d个字符", maxBodyLen)
	}
	return ""
}

// validateKeyword checks a search keyword.
func validateKeyword(q string) string {
	if utf8.RuneCountInString(q) > maxKeywordLen {
		return fmt.Sprintf("搜索关键词不能超过%d个字符", maxKeywordLen)
	}
	return ""
}

// validateAccount checks the optional username and password of an account
// request.
func validateAccount(username, password string) string {
	if utf8.RuneCountInString(username) > maxUsernameLen {
		return fmt.Sprintf("昵称不能超过%d个字符", maxUsernameLen)
	}
	if len(password) > maxPasswordLen {
		return fmt.Sprintf("密码不能超过%d个字符", maxPasswordLen)
	}
	return ""
}
