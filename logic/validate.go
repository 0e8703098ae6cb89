package logic

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"gameforum/pkg/errorx"

	"github.com/go-playground/validator/v10"
)

// Field limits, counted in characters after trimming.
const (
	MaxTitleLen    = 200
	MaxContentLen  = 5000
	MinUsernameLen = 3
	MaxUsernameLen = 20
	MinPasswordLen = 5
	// bcrypt ignores everything past 72 bytes.
	MaxPasswordLen = 72
)

// UsernamePattern allows letters of any script, digits and underscores.
var UsernamePattern = regexp.MustCompile(`^[\p{L}0-9_]+$`)

var fieldValidator = validator.New()

// ValidUsername reports whether name satisfies the username rules.
func ValidUsername(name string) bool {
	n := utf8.RuneCountInString(name)
	return n >= MinUsernameLen && n <= MaxUsernameLen && UsernamePattern.MatchString(name)
}

func validateSignUp(username, email, password, rePassword string) error {
	if !ValidUsername(username) {
		return errorx.ErrInvalidParam.WithMsg("username must be %d-%d letters, digits or underscores", MinUsernameLen, MaxUsernameLen)
	}
	if fieldValidator.Var(email, "required,email") != nil {
		return errorx.ErrInvalidParam.WithMsg("email address is not valid")
	}
	if n := len(password); n < MinPasswordLen || n > MaxPasswordLen {
		return errorx.ErrInvalidParam.WithMsg("password must be %d-%d characters", MinPasswordLen, MaxPasswordLen)
	}
	if password != rePassword {
		return errorx.ErrInvalidParam.WithMsg("passwords do not match")
	}
	return nil
}

func validateText(field, value string, limit int) (string, error) {
	v := strings.TrimSpace(value)
	if v == "" {
		return "", errorx.ErrInvalidParam.WithMsg("%s is required", field)
	}
	if utf8.RuneCountInString(v) > limit {
		return "", errorx.ErrInvalidParam.WithMsg("%s must be at most %d characters", field, limit)
	}
	return v, nil
}
