package model

import (
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validFilm() Film {
	return Film{
		Name:        "Test Film",
		Description: "Test Description",
		ReleaseDate: NewDate(2020, time.January, 1),
		Duration:    DurationOf(2 * time.Hour),
	}
}

func TestFilmValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Film)
		wantErr bool
	}{
		{name: "valid", mutate: func(*Film) {}},
		{name: "empty name", mutate: func(f *Film) { f.Name = "" }, wantErr: true},
		{name: "blank name", mutate: func(f *Film) { f.Name = "   " }, wantErr: true},
		{name: "empty description", mutate: func(f *Film) { f.Description = "" }, wantErr: true},
		{name: "description of 200 chars", mutate: func(f *Film) { f.Description = strings.Repeat("A", 200) }},
		{name: "description of 201 chars", mutate: func(f *Film) { f.Description = strings.Repeat("A", 201) }, wantErr: true},
		{name: "cyrillic description of 200 chars", mutate: func(f *Film) { f.Description = strings.Repeat("Я", 200) }},
		{name: "release on first screening", mutate: func(f *Film) { f.ReleaseDate = NewDate(1895, time.December, 28) }},
		{name: "release before first screening", mutate: func(f *Film) { f.ReleaseDate = NewDate(1895, time.December, 27) }, wantErr: true},
		{name: "missing release date", mutate: func(f *Film) { f.ReleaseDate = Date{} }, wantErr: true},
		{name: "zero duration", mutate: func(f *Film) { f.Duration = 0 }, wantErr: true},
		{name: "negative duration", mutate: func(f *Film) { f.Duration = DurationOf(-10 * time.Minute) }, wantErr: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			f := validFilm()
			tt.mutate(&f)
			err := f.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrValidation)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestUserValidate(t *testing.T) {
	t.Parallel()

	today := NewDate(2024, time.June, 15)
	valid := func() User {
		return User{Email: "user@example.com", Login: "user", Birthday: NewDate(1990, time.May, 1)}
	}

	tests := []struct {
		name    string
		mutate  func(*User)
		wantErr bool
	}{
		{name: "valid", mutate: func(*User) {}},
		{name: "empty email", mutate: func(u *User) { u.Email = "" }, wantErr: true},
		{name: "email without at", mutate: func(u *User) { u.Email = "user.example.com" }, wantErr: true},
		{name: "empty login", mutate: func(u *User) { u.Login = " " }, wantErr: true},
		{name: "login with space", mutate: func(u *User) { u.Login = "us er" }, wantErr: true},
		{name: "login with tab", mutate: func(u *User) { u.Login = "us\ter" }, wantErr: true},
		{name: "born today", mutate: func(u *User) { u.Birthday = today }},
		{name: "born tomorrow", mutate: func(u *User) { u.Birthday = NewDate(2024, time.June, 16) }, wantErr: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			u := valid()
			tt.mutate(&u)
			err := u.Validate(today)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrValidation)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestFilmPatchNewFilm_MissingFields(t *testing.T) {
	name, desc := "n", "d"
	date := NewDate(2000, time.January, 1)

	_, err := FilmPatch{Description: &desc, ReleaseDate: &date}.NewFilm()
	assert.ErrorIs(t, err, ErrValidation)

	_, err = FilmPatch{Name: &name, Description: &desc, ReleaseDate: &date}.NewFilm()
	var domainErr *Error
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, "Продолжительность обязательна", domainErr.Message)
}

func TestFilmJSON(t *testing.T) {
	f := validFilm()
	f.ID = 7
	f.Likes = NewIDSet(3, 1, 2)

	b, err := json.Marshal(f)
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"id":7,"name":"Test Film","description":"Test Description","releaseDate":"2020-01-01","duration":7200,"likes":[1,2,3]}`,
		string(b))

	var back Film
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, f.ReleaseDate, back.ReleaseDate)
	assert.Equal(t, f.Duration, back.Duration)
	assert.True(t, back.Likes.Has(2))
}

func TestUserJSON_HidesLikedFilms(t *testing.T) {
	u := User{ID: 1, Email: "a@b", Login: "a", Name: "a", Birthday: NewDate(2000, time.February, 29), LikedFilms: NewIDSet(5)}

	b, err := json.Marshal(u)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":1,"email":"a@b","login":"a","name":"a","birthday":"2000-02-29","friends":[]}`, string(b))
}

func TestDurationUnmarshal(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    time.Duration
		wantErr bool
	}{
		{in: `7200`, want: 2 * time.Hour},
		{in: `"PT2H"`, want: 2 * time.Hour},
		{in: `"PT1H30M15S"`, want: time.Hour + 30*time.Minute + 15*time.Second},
		{in: `"P1DT1M"`, want: 24*time.Hour + time.Minute},
		{in: `"-PT10M"`, want: -10 * time.Minute},
		{in: `"PT"`, wantErr: true},
		{in: `"P1Y"`, wantErr: true},
		{in: `12.5`, wantErr: true},
		{in: `true`, wantErr: true},
		{in: `9223372036`, want: 9223372036 * time.Second},
		{in: `9223372037`, wantErr: true},
		{in: `10000000000`, wantErr: true},
		{in: `20000000000`, wantErr: true},
		{in: `-20000000000`, wantErr: true},
		{in: `"PT6000000H"`, wantErr: true},
		{in: `"PT9223372037S"`, wantErr: true},
		{in: `"P106751DT23H47M17S"`, wantErr: true},
		{in: `"P106751DT23H47M16S"`, want: 9223372036 * time.Second},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			var d Duration
			err := json.Unmarshal([]byte(tt.in), &d)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, d.Std())

			out, err := json.Marshal(d)
			require.NoError(t, err)
			assert.Equal(t, strconv.FormatInt(int64(tt.want/time.Second), 10), string(out))
		})
	}
}

func TestDateUnmarshal_Invalid(t *testing.T) {
	var d Date
	assert.Error(t, json.Unmarshal([]byte(`"2020-13-01"`), &d))
	assert.Error(t, json.Unmarshal([]byte(`20200101`), &d))
}

func TestToday_UsesUTC(t *testing.T) {
	loc := time.FixedZone("UTC+10", 10*60*60)
	now := time.Date(2024, time.March, 2, 5, 0, 0, 0, loc) // 2024-03-01 19:00 UTC
	assert.Equal(t, NewDate(2024, time.March, 1), Today(now))
}

func TestIDSet_Clone(t *testing.T) {
	s := NewIDSet(1, 2)
	c := s.Clone()
	c.Add(3)
	assert.False(t, s.Has(3))
	assert.Equal(t, []int64{1, 2, 3}, c.Sorted())

	var empty IDSet
	assert.NotNil(t, empty.Clone())
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "login", DisplayName("", "login"))
	assert.Equal(t, "login", DisplayName("  ", "login"))
	assert.Equal(t, "Name", DisplayName("Name", "login"))
}
