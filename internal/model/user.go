package model

import (
	"strings"
	"unicode"
)

// User is a member of the service. Friends is symmetric: whenever b is in
// a's Friends, a is in b's Friends. LikedFilms mirrors Film.Likes. Both sets
// are maintained only by the social and like services.
type User struct {
	ID         int64  `json:"id"`
	Email      string `json:"email"`
	Login      string `json:"login"`
	Name       string `json:"name"`
	Birthday   Date   `json:"birthday"`
	Friends    IDSet  `json:"friends"`
	LikedFilms IDSet  `json:"-"`
}

// Clone returns a deep copy of u.
func (u User) Clone() User {
	u.Friends = u.Friends.Clone()
	u.LikedFilms = u.LikedFilms.Clone()
	return u
}

// Validate checks every attribute of a user about to be created. Birthdays
// are compared against today, the current UTC date.
func (u User) Validate(today Date) error {
	if err := ValidateEmail(u.Email); err != nil {
		return err
	}
	if err := ValidateLogin(u.Login); err != nil {
		return err
	}
	return ValidateBirthday(u.Birthday, today)
}

// UserPatch is an update request. Nil fields are left unchanged.
type UserPatch struct {
	ID       *int64  `json:"id"`
	Email    *string `json:"email"`
	Login    *string `json:"login"`
	Name     *string `json:"name"`
	Birthday *Date   `json:"birthday"`
}

// NewUser converts a creation request into a User. Name stays empty when
// absent; the store substitutes the login.
func (p UserPatch) NewUser() (User, error) {
	if p.Email == nil {
		return User{}, NewValidationError("Электронная почта не может быть пустой")
	}
	if p.Login == nil {
		return User{}, NewValidationError("Логин не может быть пустым")
	}
	if p.Birthday == nil || p.Birthday.IsZero() {
		return User{}, NewValidationError("Дата рождения обязательна")
	}
	u := User{Email: *p.Email, Login: *p.Login, Birthday: *p.Birthday}
	if p.Name != nil {
		u.Name = *p.Name
	}
	return u, nil
}

// ValidateEmail requires a non-blank address containing @.
func ValidateEmail(email string) error {
	if isBlank(email) {
		return NewValidationError("Электронная почта не может быть пустой")
	}
	if !strings.Contains(email, "@") {
		return NewValidationError("Электронная почта должна содержать символ @")
	}
	return nil
}

// ValidateLogin requires a non-blank login without whitespace.
func ValidateLogin(login string) error {
	if isBlank(login) {
		return NewValidationError("Логин не может быть пустым")
	}
	if strings.ContainsFunc(login, unicode.IsSpace) {
		return NewValidationError("Логин не может содержать пробелы")
	}
	return nil
}

// ValidateBirthday requires a birthday that is not after today.
func ValidateBirthday(birthday, today Date) error {
	if birthday.IsZero() {
		return NewValidationError("Дата рождения обязательна")
	}
	if birthday.After(today.Time) {
		return NewValidationError("Дата рождения не может быть в будущем")
	}
	return nil
}

// DisplayName returns name, or login when name is blank.
func DisplayName(name, login string) string {
	if isBlank(name) {
		return login
	}
	return name
}
