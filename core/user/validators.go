package user

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pmezard/go-difflib/difflib"

	"github.com/Adeanak/web-pendidikanalhikmahfix-sub000/core"
)

var (
	roleTag  = "role"
	roleText = "invalid role"

	selfRoleTag  = "selfrole"
	selfRoleText = "only teacher or parent can be requested"

	specialRegex = regexp.MustCompile("[^A-Za-z0-9]")
)

// InitValidators registers the user validators.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(roleTag, roleValidation)
	core.RegisterCustomTranslation(validate, translator, roleTag, roleText)

	_ = validate.RegisterValidation(selfRoleTag, selfRoleValidation)
	core.RegisterCustomTranslation(validate, translator, selfRoleTag, selfRoleText)

	validate.RegisterStructValidation(userStructValidation, NewUser{}, Registration{}, UpdateUser{})
	for _, rule := range passwordPolicy {
		core.RegisterCustomTranslation(validate, translator, rule.tag, rule.text)
	}
}

// Custom Validators

func roleValidation(fl validator.FieldLevel) bool {
	return Role(fl.Field().String()).IsValid()
}

func selfRoleValidation(fl validator.FieldLevel) bool {
	role := Role(fl.Field().String())
	for _, r := range SelfServiceRoles {
		if role == r {
			return true
		}
	}
	return false
}

// userStructValidation applies the password policy on NewUser, Registration and UpdateUser structs.
func userStructValidation(sl validator.StructLevel) {
	switch usr := sl.Current().Interface().(type) {
	case NewUser:
		validatePassword(usr.Password, usr.Name, usr.Username, usr.Email, sl)
	case Registration:
		validatePassword(usr.Password, usr.Name, usr.Username, usr.Email, sl)
	case UpdateUser:
		if usr.Password != "" {
			validatePassword(usr.Password, usr.Name, usr.username, usr.Email, sl)
		}
	}
}

const (
	pwdMinLen = 8
	pwdMaxSim = .7
)

// passwordRule is one check of the password policy. `attrs` are the user's name, username and email.
type passwordRule struct {
	tag  string
	text string
	ok   func(pwd []rune, attrs []string) bool
}

// passwordPolicy is checked in order and only the first broken rule is reported.
var passwordPolicy = []passwordRule{
	{
		tag:  "pwdminlen",
		text: fmt.Sprintf("password must contain at least %d characters", pwdMinLen),
		ok:   func(pwd []rune, _ []string) bool { return len(pwd) >= pwdMinLen },
	},
	{
		tag:  "pwdnospace",
		text: "password must not contain whitespace",
		ok:   func(pwd []rune, _ []string) bool { return !anyRune(pwd, unicode.IsSpace) },
	},
	{
		tag:  "pwdnotallnum",
		text: "password cannot be entirely numeric",
		ok:   func(pwd []rune, _ []string) bool { return !allRunes(pwd, unicode.IsDigit) },
	},
	{
		tag:  "pwdcplx",
		text: "password must contain at least 1 uppercase character, 1 lowercase character, 1 digit and 1 special character",
		ok: func(pwd []rune, _ []string) bool {
			return anyRune(pwd, unicode.IsUpper) && anyRune(pwd, unicode.IsLower) &&
				anyRune(pwd, unicode.IsDigit) && specialRegex.MatchString(string(pwd))
		},
	},
	{
		tag:  "pwdtoosim",
		text: "password cannot be similar to user attributes",
		ok: func(pwd []rune, attrs []string) bool {
			for _, attr := range attrs {
				if similarity(string(pwd), attr) >= pwdMaxSim {
					return false
				}
			}
			return true
		},
	},
}

func validatePassword(pwd, name, uname, email string, sl validator.StructLevel) {
	if pwd == "" { // reported by `required`
		return
	}
	runes, attrs := []rune(pwd), []string{name, uname, email}
	for _, rule := range passwordPolicy {
		if !rule.ok(runes, attrs) {
			sl.ReportError(pwd, "password", "Password", rule.tag, "")
			return
		}
	}
}

func anyRune(runes []rune, fn func(rune) bool) bool {
	for _, r := range runes {
		if fn(r) {
			return true
		}
	}
	return false
}

func allRunes(runes []rune, fn func(rune) bool) bool {
	for _, r := range runes {
		if !fn(r) {
			return false
		}
	}
	return true
}

// similarity is difflib's quick ratio over the lowercased characters of both strings.
func similarity(pwd, attr string) float64 {
	if attr == "" {
		return 0
	}
	a, b := strings.Split(strings.ToLower(pwd), ""), strings.Split(strings.ToLower(attr), "")
	return difflib.NewMatcher(a, b).QuickRatio()
}
