package core

import (
	"net/mail"
	"strings"
	"unicode/utf8"
)

type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

type Profile struct {
	Name  string
	Email string
}

func (p Profile) Validate() (Profile, error) {
	p.Name = strings.TrimSpace(p.Name)
	p.Email = strings.TrimSpace(p.Email)
	if p.Name == "" {
		return p, NewValidationError("Please enter your name", ErrMissingField)
	}
	if utf8.RuneCountInString(p.Name) > MaxTextLength || utf8.RuneCountInString(p.Email) > MaxTextLength {
		return p, NewValidationError("Name and email must be at most 200 characters", ErrTextTooLong)
	}
	if p.Email != "" {
		if _, err := mail.ParseAddress(p.Email); err != nil {
			return p, NewValidationError("Please enter a valid email address", err)
		}
	}
	return p, nil
}

// Settings are the user's app preferences. The passcode flag is stored
// only; nothing is locked behind it.
type Settings struct {
	Profile         Profile
	Currency        Currency
	Theme           Theme
	PasscodeEnabled bool
}

func DefaultSettings() Settings {
	return Settings{
		Profile:  Profile{Name: "John Doe", Email: "john@example.com"},
		Currency: CurrencyNGN,
		Theme:    ThemeLight,
	}
}

func (s Settings) DarkMode() bool {
	return s.Theme == ThemeDark
}
