package service

import (
	"errors"
	"testing"

	"HomeLedger/internal/cli/model"
	"HomeLedger/internal/cli/preview"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// failingFactory отказывает на файле с заданным именем.
type failingFactory struct {
	inner  *preview.ThumbnailFactory
	failOn string
}

func (f failingFactory) Acquire(file model.LocalFile) (*preview.Handle, error) {
	if file.Name == f.failOn {
		return nil, errors.New("boom")
	}
	return f.inner.Acquire(file)
}

func TestMediaSession_MarkIsIdempotentAndDisjoint(t *testing.T) {
	s := NewMediaSession(nil, []string{"a.jpg", "b.mp4"})
	require.NoError(t, s.MarkExistingForDeletion("a.jpg"))
	require.NoError(t, s.MarkExistingForDeletion("a.jpg"))

	assert.Equal(t, []string{"b.mp4"}, s.Existing())
	assert.Equal(t, []string{"a.jpg"}, s.BuildEditDelta().ToDelete)

	err := s.MarkExistingForDeletion("zzz.png")
	assert.ErrorIs(t, err, ErrNotAttached)
}

func TestMediaSession_EditDelta(t *testing.T) {
	f := preview.NewThumbnailFactory(t.TempDir())
	s := NewMediaSession(f, []string{"a.jpg"})
	defer s.Close()

	file := localFile(t, "new.mp4", "video/mp4", []byte("v"))
	require.NoError(t, s.MarkExistingForDeletion("a.jpg"))
	require.NoError(t, s.AddFiles(file))

	d := s.BuildEditDelta()
	assert.Equal(t, []string{"a.jpg"}, d.ToDelete)
	assert.Equal(t, []model.LocalFile{file}, d.ToAdd)
	assert.Empty(t, s.Existing())
}

func TestMediaSession_RemoveNewFileReleases(t *testing.T) {
	f := preview.NewThumbnailFactory(t.TempDir())
	s := NewMediaSession(f, nil)
	defer s.Close()

	a := localFile(t, "a.jpg", "image/jpeg", []byte("x"))
	b := localFile(t, "b.mp4", "video/mp4", []byte("y"))
	require.NoError(t, s.AddFiles(a, b))
	assert.Equal(t, 2, f.Live())
	assert.Equal(t, model.MediaVideo, s.Pending()[1].Preview.Kind)

	require.NoError(t, s.RemoveNewFile(0))
	assert.Equal(t, 1, f.Live())
	assert.Equal(t, []model.LocalFile{b}, s.Files())
	assert.Error(t, s.RemoveNewFile(5))
}

func TestMediaSession_CloseReleasesAll(t *testing.T) {
	f := preview.NewThumbnailFactory(t.TempDir())
	s := NewMediaSession(f, []string{"x.png"})
	require.NoError(t, s.AddFiles(
		localFile(t, "a.jpg", "image/jpeg", []byte("x")),
		localFile(t, "b.webm", "video/webm", []byte("y")),
	))
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())
	assert.Equal(t, 0, f.Live())

	assert.ErrorIs(t, s.AddFiles(localFile(t, "c.jpg", "image/jpeg", nil)), ErrSessionClosed)
	assert.ErrorIs(t, s.MarkExistingForDeletion("x.png"), ErrSessionClosed)
	assert.ErrorIs(t, s.RemoveNewFile(0), ErrSessionClosed)
}

func TestMediaSession_AddFilesIsAllOrNothing(t *testing.T) {
	inner := preview.NewThumbnailFactory(t.TempDir())
	s := NewMediaSession(failingFactory{inner: inner, failOn: "bad.jpg"}, nil)
	defer s.Close()

	err := s.AddFiles(
		localFile(t, "ok.jpg", "image/jpeg", []byte("x")),
		localFile(t, "bad.jpg", "image/jpeg", []byte("y")),
	)
	require.Error(t, err)
	assert.Empty(t, s.Pending())
	assert.Equal(t, 0, inner.Live())
}

func TestEditDelta_Empty(t *testing.T) {
	assert.True(t, EditDelta{}.Empty())
	assert.False(t, EditDelta{ToDelete: []string{"a"}}.Empty())
}
