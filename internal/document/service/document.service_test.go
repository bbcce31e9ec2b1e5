package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"manjaword/internal/document/model"
	"manjaword/internal/document/repository"
	"manjaword/pkg/apperr"
	"manjaword/pkg/dialog"
	"manjaword/store"
)

type recordingPicker struct {
	path   string
	ok     bool
	err    error
	opened []dialog.Options
	saved  []dialog.Options
}

func (p *recordingPicker) PickOpen(_ context.Context, opts dialog.Options) (string, bool, error) {
	p.opened = append(p.opened, opts)
	return p.path, p.ok, p.err
}

func (p *recordingPicker) PickSave(_ context.Context, opts dialog.Options) (string, bool, error) {
	p.saved = append(p.saved, opts)
	return p.path, p.ok, p.err
}

type mockRecent struct {
	touched map[string]string
	removed []string
	err     error
}

func (m *mockRecent) Remove(path string) error {
	m.removed = append(m.removed, path)
	return m.err
}

func (m *mockRecent) Touch(path, kind string) error {
	if m.err != nil {
		return m.err
	}
	if m.touched == nil {
		m.touched = make(map[string]string)
	}
	m.touched[path] = kind
	return nil
}

func delta(text string) any {
	return map[string]any{"ops": []any{map[string]any{"insert": text}}}
}

func TestDocumentService_SaveThenOpen(t *testing.T) {
	dir := t.TempDir()
	picker := &recordingPicker{path: filepath.Join(dir, "letter.manjaword.json"), ok: true}
	recent := &mockRecent{}
	svc := NewDocumentService(repository.NewFileRepository(), picker, recent)

	saved, err := svc.Save(context.Background(), delta("Dear Ana,\n"))
	require.NoError(t, err)
	assert.Equal(t, picker.path, saved)
	require.Len(t, picker.saved, 1)
	assert.Equal(t, model.DefaultName, picker.saved[0].DefaultName)

	doc, err := svc.Open(context.Background())
	require.NoError(t, err)
	assert.Equal(t, saved, doc.Path)
	assert.Equal(t, delta("Dear Ana,\n"), doc.Content)
	assert.Equal(t, store.KindOpen, recent.touched[saved])
}

func TestDocumentService_SaveAppendsExtensionOnce(t *testing.T) {
	dir := t.TempDir()
	svc := NewDocumentService(repository.NewFileRepository(), nil, nil)

	path, err := svc.SavePath(filepath.Join(dir, "draft"), delta("x"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "draft.manjaword.json"), path)
	assert.Equal(t, 1, strings.Count(path, model.Extension))

	again, err := svc.SavePath(path, delta("y"))
	require.NoError(t, err)
	assert.Equal(t, path, again)
}

func TestDocumentService_SaveOverwritesWithFreshEnvelope(t *testing.T) {
	dir := t.TempDir()
	svc := NewDocumentService(repository.NewFileRepository(), nil, nil)
	first := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	second := first.Add(time.Hour)

	svc.now = func() time.Time { return first }
	path, err := svc.SavePath(filepath.Join(dir, "a"), delta("a much longer first version of the text"))
	require.NoError(t, err)

	svc.now = func() time.Time { return second }
	_, err = svc.SavePath(path, delta("short"))
	require.NoError(t, err)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	env, err := model.Decode(raw)
	require.NoError(t, err)
	assert.True(t, env.UpdatedAt.Equal(second))
	assert.Equal(t, delta("short"), env.Content)
}

func TestDocumentService_NoFileSelected(t *testing.T) {
	svc := NewDocumentService(repository.NewFileRepository(), &recordingPicker{}, nil)

	_, err := svc.Open(context.Background())
	assert.ErrorIs(t, err, apperr.ErrNoFile)

	_, err = svc.Save(context.Background(), delta("x"))
	assert.ErrorIs(t, err, apperr.ErrNoFile)
}

func TestDocumentService_PickerErrorPropagates(t *testing.T) {
	boom := errors.New("dialog crashed")
	svc := NewDocumentService(repository.NewFileRepository(), &recordingPicker{err: boom}, nil)

	_, err := svc.Open(context.Background())
	assert.ErrorIs(t, err, boom)
}

func TestDocumentService_OpenRejectsBeforeIO(t *testing.T) {
	dir := t.TempDir()
	plain := filepath.Join(dir, "notes.json")
	require.NoError(t, os.WriteFile(plain, []byte(`{}`), 0o644))
	svc := NewDocumentService(repository.NewFileRepository(), nil, nil)

	_, err := svc.OpenPath(plain)
	assert.ErrorIs(t, err, apperr.ErrInvalidExtension)

	_, err = svc.OpenPath(filepath.Join(dir, "bad\x00name.manjaword.json"))
	assert.ErrorIs(t, err, apperr.ErrInvalidPath)
}

func TestDocumentService_SaveRejectsControlCharacters(t *testing.T) {
	dir := t.TempDir()
	svc := NewDocumentService(repository.NewFileRepository(), nil, nil)

	_, err := svc.SavePath(filepath.Join(dir, "evil\nname"), delta("x"))
	assert.ErrorIs(t, err, apperr.ErrInvalidPath)

	entries, _ := os.ReadDir(dir)
	assert.Empty(t, entries)
}

func TestDocumentService_OpenCorruptAndMissing(t *testing.T) {
	dir := t.TempDir()
	corrupt := filepath.Join(dir, "broken.manjaword.json")
	require.NoError(t, os.WriteFile(corrupt, []byte(`{"version":"1.0.0"`), 0o644))
	recent := &mockRecent{}
	svc := NewDocumentService(repository.NewFileRepository(), nil, recent)

	_, err := svc.OpenPath(corrupt)
	var deser *apperr.DeserializationError
	assert.ErrorAs(t, err, &deser)
	assert.Empty(t, recent.touched)
	assert.Empty(t, recent.removed)

	missing := filepath.Join(dir, "missing.manjaword.json")
	_, err = svc.OpenPath(missing)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Equal(t, []string{missing}, recent.removed)
}

func TestDocumentService_MissingFileRemovalFailureKeepsIOError(t *testing.T) {
	svc := NewDocumentService(repository.NewFileRepository(), nil, &mockRecent{err: errors.New("db locked")})

	_, err := svc.OpenPath(filepath.Join(t.TempDir(), "gone.manjaword.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestDocumentService_RecentFailureDoesNotFailSave(t *testing.T) {
	dir := t.TempDir()
	svc := NewDocumentService(repository.NewFileRepository(), nil, &mockRecent{err: errors.New("db locked")})

	path, err := svc.SavePath(filepath.Join(dir, "ok"), delta("x"))
	require.NoError(t, err)
	assert.FileExists(t, path)
}

func TestDocumentService_SaveUnencodableContent(t *testing.T) {
	dir := t.TempDir()
	svc := NewDocumentService(repository.NewFileRepository(), nil, nil)

	_, err := svc.SavePath(filepath.Join(dir, "x"), map[string]any{"bad": make(chan int)})
	var ser *apperr.SerializationError
	assert.ErrorAs(t, err, &ser)
}
