// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package ratelimit

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"
)

// ErrLimited is matched by every *LimitError.
var ErrLimited = errors.New("rate limited")

// LimitError reports which rule refused the request.
type LimitError struct {
	Message string
}

func (e *LimitError) Error() string { return e.Message }

// Is makes errors.Is(err, ErrLimited) match.
func (e *LimitError) Is(target error) bool { return target == ErrLimited }

// Rule allows Max events per Window. Global rules share one counter for
// every email.
type Rule struct {
	Name    string
	Max     int64
	Window  time.Duration
	Global  bool
	Message string
}

// DefaultEmailRules are the layered limits on verification emails.
var DefaultEmailRules = []Rule{
	{Name: "email_1min", Max: 1, Window: time.Minute, Message: "发送过于频繁，请1分钟后再试"},
	{Name: "email_1h", Max: 3, Window: time.Hour, Message: "发送次数过多，请1小时后再试"},
	{Name: "email_1d", Max: 10, Window: 24 * time.Hour, Message: "今日发送次数已达上限，请明天再试"},
	{Name: "email_global_1d", Max: 200, Window: 24 * time.Hour, Global: true, Message: "系统邮件发送量已达今日上限，请明天再试"},
}

// EmailPolicy applies rules in order. The first rule exceeded refuses the
// send; rules after it are not counted.
type EmailPolicy struct {
	counter Counter
	rules   []Rule
}

// NewEmailPolicy returns a policy over counter using DefaultEmailRules.
func NewEmailPolicy(counter Counter) *EmailPolicy {
	return &EmailPolicy{counter: counter, rules: DefaultEmailRules}
}

// Allow counts one send to email and returns a *LimitError when a rule is
// exceeded.
func (p *EmailPolicy) Allow(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	for _, rule := range p.rules {
		key := rule.Name
		if !rule.Global {
			key += ":" + email
		}
		n, err := p.counter.Incr(ctx, key, rule.Window)
		if err != nil {
			return err
		}
		if n > rule.Max {
			if rule.Global {
				slog.Error("global email quota reached", "rule", rule.Name, "email", email)
			} else {
				slog.Warn("email send rate limited", "rule", rule.Name, "email", email)
			}
			return &LimitError{Message: rule.Message}
		}
	}
	return nil
}
