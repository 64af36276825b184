package storage

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/filmorate/internal/model"
)

func validFilm(name string) model.Film {
	return model.Film{
		Name:        name,
		Description: "Test Description",
		ReleaseDate: model.NewDate(2020, time.January, 1),
		Duration:    model.DurationOf(2 * time.Hour),
	}
}

func ptr[T any](v T) *T { return &v }

func TestFilmStore_AddAssignsSequentialIDs(t *testing.T) {
	s := NewFilmStore(zerolog.Nop())

	for want := int64(1); want <= 3; want++ {
		f, err := s.Add(validFilm("film"))
		require.NoError(t, err)
		assert.Equal(t, want, f.ID)
		assert.NotNil(t, f.Likes)
		assert.Zero(t, f.Likes.Len())
	}
}

func TestFilmStore_AddIgnoresClientIDAndLikes(t *testing.T) {
	s := NewFilmStore(zerolog.Nop())

	in := validFilm("film")
	in.ID = 42
	in.Likes = model.NewIDSet(1, 2)

	f, err := s.Add(in)
	require.NoError(t, err)
	assert.Equal(t, int64(1), f.ID)
	assert.Zero(t, f.Likes.Len())
}

func TestFilmStore_FindByIDReturnsAdded(t *testing.T) {
	s := NewFilmStore(zerolog.Nop())

	added, err := s.Add(validFilm("film"))
	require.NoError(t, err)

	found, ok := s.FindByID(added.ID)
	require.True(t, ok)
	if diff := cmp.Diff(added, found); diff != "" {
		t.Fatalf("FindByID mismatch (-want +got):\n%s", diff)
	}

	_, ok = s.FindByID(99)
	assert.False(t, ok)
}

func TestFilmStore_AddRejectsInvalid(t *testing.T) {
	s := NewFilmStore(zerolog.Nop())

	f := validFilm("film")
	f.ReleaseDate = model.NewDate(1895, time.December, 27)

	_, err := s.Add(f)
	assert.ErrorIs(t, err, model.ErrValidation)
	assert.Empty(t, s.FindAll())

	// a rejected film does not consume an id
	ok, err := s.Add(validFilm("film"))
	require.NoError(t, err)
	assert.Equal(t, int64(1), ok.ID)
}

func TestFilmStore_FindAllKeepsInsertionOrderAndCopies(t *testing.T) {
	s := NewFilmStore(zerolog.Nop())
	for _, name := range []string{"a", "b", "c"} {
		_, err := s.Add(validFilm(name))
		require.NoError(t, err)
	}

	all := s.FindAll()
	require.Len(t, all, 3)
	assert.Equal(t, []string{"a", "b", "c"}, []string{all[0].Name, all[1].Name, all[2].Name})

	all[0].Name = "mutated"
	all[0].Likes.Add(5)
	f, _ := s.FindByID(1)
	assert.Equal(t, "a", f.Name)
	assert.False(t, f.Likes.Has(5))
}

func TestFilmStore_Update(t *testing.T) {
	tests := []struct {
		name    string
		patch   func(id int64) model.FilmPatch
		want    func(f model.Film) model.Film
		wantErr error
	}{
		{
			name: "merges present fields",
			patch: func(id int64) model.FilmPatch {
				return model.FilmPatch{ID: &id, Name: ptr("Updated Film"), Description: ptr("Updated Description")}
			},
			want: func(f model.Film) model.Film {
				f.Name = "Updated Film"
				f.Description = "Updated Description"
				return f
			},
		},
		{
			name:  "no fields leaves film unchanged",
			patch: func(id int64) model.FilmPatch { return model.FilmPatch{ID: &id} },
			want:  func(f model.Film) model.Film { return f },
		},
		{
			name: "changes duration and release date",
			patch: func(id int64) model.FilmPatch {
				return model.FilmPatch{
					ID:          &id,
					ReleaseDate: ptr(model.NewDate(1999, time.March, 31)),
					Duration:    ptr(model.DurationOf(136 * time.Minute)),
				}
			},
			want: func(f model.Film) model.Film {
				f.ReleaseDate = model.NewDate(1999, time.March, 31)
				f.Duration = model.DurationOf(136 * time.Minute)
				return f
			},
		},
		{
			name:    "missing id",
			patch:   func(int64) model.FilmPatch { return model.FilmPatch{Name: ptr("x")} },
			wantErr: model.ErrValidation,
		},
		{
			name:    "unknown id",
			patch:   func(int64) model.FilmPatch { return model.FilmPatch{ID: ptr(int64(999)), Name: ptr("x")} },
			wantErr: model.ErrNotFound,
		},
		{
			name: "invalid field",
			patch: func(id int64) model.FilmPatch {
				return model.FilmPatch{ID: &id, Duration: ptr(model.Duration(0))}
			},
			wantErr: model.ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewFilmStore(zerolog.Nop())
			orig, err := s.Add(validFilm("Test Film"))
			require.NoError(t, err)

			got, err := s.Update(tt.patch(orig.ID))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				stored, _ := s.FindByID(orig.ID)
				assert.Empty(t, cmp.Diff(orig, stored))
				return
			}
			require.NoError(t, err)
			want := tt.want(orig)
			assert.Empty(t, cmp.Diff(want, got))
			stored, _ := s.FindByID(orig.ID)
			assert.Empty(t, cmp.Diff(want, stored))
		})
	}
}

func TestFilmStore_UpdateIsAllOrNothing(t *testing.T) {
	s := NewFilmStore(zerolog.Nop())
	orig, err := s.Add(validFilm("Test Film"))
	require.NoError(t, err)

	// valid name change combined with an invalid release date
	_, err = s.Update(model.FilmPatch{
		ID:          &orig.ID,
		Name:        ptr("New Name"),
		ReleaseDate: ptr(model.NewDate(1800, time.January, 1)),
	})
	require.ErrorIs(t, err, model.ErrValidation)

	stored, _ := s.FindByID(orig.ID)
	assert.Equal(t, "Test Film", stored.Name)
}

func TestFilmStore_UpdateKeepsLikes(t *testing.T) {
	s := NewFilmStore(zerolog.Nop())
	orig, err := s.Add(validFilm("Test Film"))
	require.NoError(t, err)
	require.NoError(t, s.AddLike(orig.ID, 7))

	got, err := s.Update(model.FilmPatch{ID: &orig.ID, Name: ptr("Other")})
	require.NoError(t, err)
	assert.True(t, got.Likes.Has(7))
}

func TestFilmStore_LikePrimitives(t *testing.T) {
	s := NewFilmStore(zerolog.Nop())
	f, err := s.Add(validFilm("film"))
	require.NoError(t, err)

	require.NoError(t, s.AddLike(f.ID, 3))
	got, _ := s.FindByID(f.ID)
	assert.Equal(t, []int64{3}, got.Likes.Sorted())

	require.NoError(t, s.RemoveLike(f.ID, 3))
	got, _ = s.FindByID(f.ID)
	assert.Zero(t, got.Likes.Len())

	assert.ErrorIs(t, s.AddLike(99, 3), model.ErrNotFound)
	assert.ErrorIs(t, s.RemoveLike(99, 3), model.ErrNotFound)
}
