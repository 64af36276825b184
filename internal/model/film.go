package model

import (
	"strings"
	"time"
	"unicode/utf8"
)

// MaxDescriptionLength is the longest film description, in characters.
const MaxDescriptionLength = 200

// EarliestReleaseDate is the date of the first public film screening.
// No film may be released before it.
var EarliestReleaseDate = NewDate(1895, time.December, 28)

// Film is a catalog entry. Likes holds the ids of users who liked the film
// and is maintained only by the like service.
type Film struct {
	ID          int64    `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	ReleaseDate Date     `json:"releaseDate"`
	Duration    Duration `json:"duration"`
	Likes       IDSet    `json:"likes"`
}

// Clone returns a deep copy of f.
func (f Film) Clone() Film {
	f.Likes = f.Likes.Clone()
	return f
}

// Validate checks every attribute of a film about to be created.
func (f Film) Validate() error {
	if err := ValidateFilmName(f.Name); err != nil {
		return err
	}
	if err := ValidateFilmDescription(f.Description); err != nil {
		return err
	}
	if err := ValidateReleaseDate(f.ReleaseDate); err != nil {
		return err
	}
	return ValidateDuration(f.Duration)
}

// FilmPatch is an update request. Nil fields are left unchanged.
type FilmPatch struct {
	ID          *int64    `json:"id"`
	Name        *string   `json:"name"`
	Description *string   `json:"description"`
	ReleaseDate *Date     `json:"releaseDate"`
	Duration    *Duration `json:"duration"`
}

// NewFilm converts a creation request into a Film, failing when a required
// attribute is missing. Attribute values are checked by Film.Validate.
func (p FilmPatch) NewFilm() (Film, error) {
	if p.Name == nil {
		return Film{}, NewValidationError("Название фильма не может быть пустым")
	}
	if p.Description == nil {
		return Film{}, NewValidationError("Описание фильма не может быть пустым")
	}
	if p.ReleaseDate == nil || p.ReleaseDate.IsZero() {
		return Film{}, NewValidationError("Дата релиза обязательна")
	}
	if p.Duration == nil {
		return Film{}, NewValidationError("Продолжительность обязательна")
	}
	return Film{
		Name:        *p.Name,
		Description: *p.Description,
		ReleaseDate: *p.ReleaseDate,
		Duration:    *p.Duration,
	}, nil
}

// ValidateFilmName rejects a blank name.
func ValidateFilmName(name string) error {
	if isBlank(name) {
		return NewValidationError("Название фильма не может быть пустым")
	}
	return nil
}

// ValidateFilmDescription requires a non-blank description of at most
// MaxDescriptionLength characters.
func ValidateFilmDescription(description string) error {
	if isBlank(description) {
		return NewValidationError("Описание фильма не может быть пустым")
	}
	if utf8.RuneCountInString(description) > MaxDescriptionLength {
		return NewValidationError("Описание фильма не может превышать %d символов", MaxDescriptionLength)
	}
	return nil
}

// ValidateReleaseDate requires a date no earlier than EarliestReleaseDate.
func ValidateReleaseDate(d Date) error {
	if d.IsZero() {
		return NewValidationError("Дата релиза обязательна")
	}
	if d.Before(EarliestReleaseDate.Time) {
		return NewValidationError("Дата релиза должна быть не раньше %s", EarliestReleaseDate)
	}
	return nil
}

// ValidateDuration requires a positive running time.
func ValidateDuration(d Duration) error {
	if d <= 0 {
		return NewValidationError("Продолжительность фильма должна быть положительным числом")
	}
	return nil
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
