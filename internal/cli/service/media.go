package service

import (
	"errors"
	"fmt"
	"sync"

	"HomeLedger/internal/cli/model"
	"HomeLedger/internal/cli/preview"
)

var (
	// ErrSessionClosed - изменение уже закрытой медиасессии.
	ErrSessionClosed = errors.New("media session closed")
	// ErrNotAttached - пометка файла, которого нет у поста.
	ErrNotAttached = errors.New("media is not attached to the post")
)

// PendingFile - локальный файл, ожидающий загрузки, и его превью.
type PendingFile struct {
	File    model.LocalFile
	Preview *preview.Handle
}

// EditDelta - часть правки поста, относящаяся к вложениям.
type EditDelta struct {
	ToDelete []string
	ToAdd    []model.LocalFile
}

// Empty сообщает, что дельта не меняет вложений.
func (d EditDelta) Empty() bool {
	return len(d.ToDelete) == 0 && len(d.ToAdd) == 0
}

// MediaSession отслеживает изменения вложений одного создаваемого или редактируемого поста.
// Сохраняемые и помеченные к удалению файлы не пересекаются: файл покидает
// первый набор ровно тогда, когда попадает во второй. Close вызывается на любом
// пути выхода и освобождает все оставшиеся превью.
type MediaSession struct {
	factory preview.Factory

	mu       sync.Mutex
	existing []string
	marked   []string
	pending  []PendingFile
	closed   bool
}

// NewMediaSession открывает сессию над имеющимися вложениями поста
// (nil для нового поста). С nil-фабрикой превью не создаются.
func NewMediaSession(f preview.Factory, existing []string) *MediaSession {
	return &MediaSession{factory: f, existing: append([]string(nil), existing...)}
}

// AddFiles добавляет файлы к ожидающим, получая по превью на файл.
// Если хоть одно превью не получено, не добавляется ни один файл.
func (s *MediaSession) AddFiles(files ...model.LocalFile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	added := make([]PendingFile, 0, len(files))
	for _, f := range files {
		pf := PendingFile{File: f}
		if s.factory != nil {
			h, err := s.factory.Acquire(f)
			if err != nil {
				for _, a := range added {
					releaseQuiet(a.Preview)
				}
				return fmt.Errorf("add %s: %w", f.Name, err)
			}
			pf.Preview = h
		}
		added = append(added, pf)
	}
	s.pending = append(s.pending, added...)
	return nil
}

func releaseQuiet(h *preview.Handle) {
	if h != nil {
		_ = h.Release()
	}
}

// RemoveNewFile убирает ожидающий файл по индексу и освобождает его превью.
func (s *MediaSession) RemoveNewFile(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	if index < 0 || index >= len(s.pending) {
		return fmt.Errorf("no pending file at index %d", index)
	}
	pf := s.pending[index]
	s.pending = append(s.pending[:index], s.pending[index+1:]...)
	if pf.Preview != nil {
		return pf.Preview.Release()
	}
	return nil
}

// MarkExistingForDeletion переносит filename из сохраняемых в помеченные к удалению.
// Повторная пометка ничего не делает.
func (s *MediaSession) MarkExistingForDeletion(filename string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	for _, m := range s.marked {
		if m == filename {
			return nil
		}
	}
	for i, e := range s.existing {
		if e == filename {
			s.existing = append(s.existing[:i], s.existing[i+1:]...)
			s.marked = append(s.marked, filename)
			return nil
		}
	}
	return fmt.Errorf("%q: %w", filename, ErrNotAttached)
}

// Existing возвращает сохраняемые вложения.
func (s *MediaSession) Existing() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.existing...)
}

// Marked возвращает вложения, помеченные к удалению.
func (s *MediaSession) Marked() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.marked...)
}

// Pending возвращает файлы, ожидающие загрузки, с превью.
func (s *MediaSession) Pending() []PendingFile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]PendingFile(nil), s.pending...)
}

// Files возвращает локальные файлы, ожидающие загрузки.
func (s *MediaSession) Files() []model.LocalFile {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.LocalFile, 0, len(s.pending))
	for _, pf := range s.pending {
		out = append(out, pf.File)
	}
	return out
}

// BuildEditDelta собирает дельту для отправки.
func (s *MediaSession) BuildEditDelta() EditDelta {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := EditDelta{
		ToDelete: append([]string{}, s.marked...),
		ToAdd:    make([]model.LocalFile, 0, len(s.pending)),
	}
	for _, pf := range s.pending {
		d.ToAdd = append(d.ToAdd, pf.File)
	}
	return d
}

// Close освобождает все удерживаемые превью; повторный вызов ничего не делает.
func (s *MediaSession) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	var errs []error
	for _, pf := range s.pending {
		if pf.Preview != nil {
			if err := pf.Preview.Release(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}
