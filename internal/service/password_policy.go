// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"fmt"
	"unicode"
	"unicode/utf8"
)

// maxPasswordBytes is the bcrypt input limit.
const maxPasswordBytes = 72

// minCharacterClasses is how many of upper, lower, digit and symbol a
// password must mix.
const minCharacterClasses = 3

// PasswordPolicy is the complexity rule every new password must satisfy.
type PasswordPolicy struct {
	MinLength int
}

func NewPasswordPolicy(minLength int) PasswordPolicy {
	if minLength < 1 {
		minLength = 1
	}
	return PasswordPolicy{MinLength: minLength}
}

// Check returns an error wrapping ErrWeakPassword when password is rejected.
func (p PasswordPolicy) Check(password string) error {
	if password == "" {
		return fmt.Errorf("%w: password is empty", ErrWeakPassword)
	}
	if !utf8.ValidString(password) {
		return fmt.Errorf("%w: password is not valid UTF-8", ErrWeakPassword)
	}
	if n := utf8.RuneCountInString(password); n < p.MinLength {
		return fmt.Errorf("%w: password must be at least %d characters long", ErrWeakPassword, p.MinLength)
	}
	if len(password) > maxPasswordBytes {
		return fmt.Errorf("%w: password must not exceed %d bytes", ErrWeakPassword, maxPasswordBytes)
	}

	var upper, lower, digit, symbol bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		default:
			symbol = true
		}
	}

	classes := 0
	for _, has := range []bool{upper, lower, digit, symbol} {
		if has {
			classes++
		}
	}
	if classes < minCharacterClasses {
		return fmt.Errorf("%w: password must mix at least %d of upper case, lower case, digits and symbols",
			ErrWeakPassword, minCharacterClasses)
	}

	return nil
}
