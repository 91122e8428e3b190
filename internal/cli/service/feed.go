package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"HomeLedger/internal/cli/api"
	"HomeLedger/internal/cli/model"
	"HomeLedger/internal/cli/preview"
	"HomeLedger/internal/cli/principal"
	"HomeLedger/internal/cli/repo"
	"HomeLedger/internal/cli/validate"

	"go.uber.org/zap"
)

// PostStore - порт удалённого хранилища постов; *api.Client его реализует.
type PostStore interface {
	ListPosts(ctx context.Context) ([]model.Post, error)
	CreatePost(ctx context.Context, form *api.Form, files []model.LocalFile) (model.Post, error)
	GetPost(ctx context.Context, userID, postID string) (model.Post, error)
	UpdatePost(ctx context.Context, userID, postID string, form *api.Form, toDelete []string, toAdd []model.LocalFile) error
	DeletePost(ctx context.Context, userID, postID string) error
}

// Feed - кэш ленты постов, новые сверху.
type Feed struct {
	store    PostStore
	previews preview.Factory
	notify   Notifier
	log      *zap.SugaredLogger
	snap     repo.PostRepository

	mu    sync.RWMutex
	posts []model.Post
}

// NewFeed создаёт ленту поверх хранилища; previews может быть nil.
func NewFeed(store PostStore, previews preview.Factory, n Notifier, log *zap.SugaredLogger) *Feed {
	if n == nil {
		n = Discard
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Feed{store: store, previews: previews, notify: n, log: log}
}

// WithSnapshots включает сохранение каждой загруженной ленты в r.
func (f *Feed) WithSnapshots(r repo.PostRepository) *Feed {
	f.snap = r
	return f
}

func clonePosts(posts []model.Post) []model.Post {
	return append([]model.Post(nil), posts...)
}

// ValidatePost проверяет обязательные поля варианта поста. При редактировании
// progress-поста нужен хотя бы один навык.
func ValidatePost(p model.Post, editing bool) error {
	switch v := p.Variant.(type) {
	case nil, *model.Update:
		return validate.Required(validate.FieldDescription, p.Description)
	case *model.Progress:
		if err := validate.Required(validate.FieldTitle, v.Title); err != nil {
			return err
		}
		if err := validate.Required(validate.FieldDescription, p.Description); err != nil {
			return err
		}
		if editing {
			return validate.Skills(v.Skills)
		}
		return nil
	}
	return fmt.Errorf("%w %T", api.ErrUnknownPostType, p.Variant)
}

// LoadAll загружает всю ленту и кэширует её по убыванию времени создания.
func (f *Feed) LoadAll(ctx context.Context) ([]model.Post, error) {
	posts, err := f.store.ListPosts(ctx)
	if err != nil {
		f.log.Errorw("load posts failed", "error", err)
		f.notify.Notify(Notice{Level: LevelError, Title: "Error", Text: "There was an error loading posts."})
		return nil, fmt.Errorf("load posts: %w", err)
	}
	sort.SliceStable(posts, func(i, j int) bool {
		return posts[i].CreatedAt.After(posts[j].CreatedAt)
	})

	f.mu.Lock()
	f.posts = clonePosts(posts)
	f.mu.Unlock()

	if f.snap != nil {
		if err := f.snap.SavePosts(ctx, posts); err != nil {
			f.log.Warnw("failed to save post snapshot", "error", err)
		}
	}
	return clonePosts(posts), nil
}

// LoadSnapshot наполняет кэш из локального снимка.
func (f *Feed) LoadSnapshot(ctx context.Context) ([]model.Post, error) {
	if f.snap == nil {
		return nil, repo.ErrNoSnapshot
	}
	posts, err := f.snap.ListPosts(ctx)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	f.posts = clonePosts(posts)
	f.mu.Unlock()
	return posts, nil
}

// Posts возвращает кэш ленты.
func (f *Feed) Posts() []model.Post {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return clonePosts(f.posts)
}

// NewSession открывает медиасессию нового поста.
func (f *Feed) NewSession() *MediaSession {
	return NewMediaSession(f.previews, nil)
}

func (f *Feed) warnInvalid(err error) {
	var fe *validate.FieldError
	if errors.As(err, &fe) {
		f.notify.Notify(Notice{Level: LevelWarning, Title: "Warning", Text: fe.Message})
	}
}

// Create отправляет новый пост p с ожидающими файлами сессии и добавляет
// сохранённый пост в начало кэша. Сессию закрывает вызывающий.
func (f *Feed) Create(ctx context.Context, p principal.Principal, draft model.Post, session *MediaSession) (model.Post, error) {
	if !p.Valid() {
		return model.Post{}, principal.ErrMissing
	}
	if err := ValidatePost(draft, false); err != nil {
		f.warnInvalid(err)
		return model.Post{}, err
	}
	var files []model.LocalFile
	if session != nil {
		files = session.Files()
	}
	created, err := f.store.CreatePost(ctx, api.PostFields(p.ID, draft), files)
	if err != nil {
		f.log.Errorw("create post failed", "user", p.ID, "postType", int(draft.Type()), "error", err)
		f.notify.Notify(Notice{Level: LevelError, Title: "Error", Text: "There was an error creating the post."})
		return model.Post{}, fmt.Errorf("create post: %w", err)
	}

	f.mu.Lock()
	f.posts = append([]model.Post{created}, f.posts...)
	f.mu.Unlock()

	f.log.Infow("post created", "id", created.ID, "media", len(created.MediaIDs))
	f.notify.Notify(Notice{Level: LevelSuccess, Title: "Success", Text: "Post created successfully"})
	return created, nil
}

// Get загружает один пост пользователя p.
func (f *Feed) Get(ctx context.Context, p principal.Principal, postID string) (model.Post, error) {
	if !p.Valid() {
		return model.Post{}, principal.ErrMissing
	}
	post, err := f.store.GetPost(ctx, p.ID, postID)
	if err != nil {
		return model.Post{}, fmt.Errorf("get post %s: %w", postID, err)
	}
	return post, nil
}

// OpenEditSession загружает пост и открывает медиасессию над его вложениями.
func (f *Feed) OpenEditSession(ctx context.Context, p principal.Principal, postID string) (model.Post, *MediaSession, error) {
	post, err := f.Get(ctx, p, postID)
	if err != nil {
		f.log.Errorw("fetch post for edit failed", "id", postID, "error", err)
		f.notify.Notify(Notice{Level: LevelError, Title: "Error", Text: "There was an error loading the post."})
		return model.Post{}, nil, err
	}
	return post, NewMediaSession(f.previews, post.MediaIDs), nil
}

// Update отправляет все поля черновика и дельту вложений, затем
// перезагружает ленту. Запись в кэше на месте не правится.
func (f *Feed) Update(ctx context.Context, p principal.Principal, postID string, draft model.Post, delta EditDelta) error {
	if !p.Valid() {
		return principal.ErrMissing
	}
	if err := ValidatePost(draft, true); err != nil {
		f.warnInvalid(err)
		return err
	}
	form := api.PostFields(p.ID, draft)
	if err := f.store.UpdatePost(ctx, p.ID, postID, form, delta.ToDelete, delta.ToAdd); err != nil {
		f.log.Errorw("update post failed", "id", postID, "error", err)
		f.notify.Notify(Notice{Level: LevelError, Title: "Error", Text: "There was an error updating the post."})
		return fmt.Errorf("update post %s: %w", postID, err)
	}
	f.log.Infow("post updated", "id", postID, "deleted", len(delta.ToDelete), "added", len(delta.ToAdd))
	f.notify.Notify(Notice{Level: LevelSuccess, Title: "Success", Text: "Post updated successfully"})
	if _, err := f.LoadAll(ctx); err != nil {
		return err
	}
	return nil
}

// Delete удаляет пост и перезагружает ленту.
func (f *Feed) Delete(ctx context.Context, p principal.Principal, postID string) error {
	if !p.Valid() {
		return principal.ErrMissing
	}
	if err := f.store.DeletePost(ctx, p.ID, postID); err != nil {
		f.log.Errorw("delete post failed", "id", postID, "error", err)
		f.notify.Notify(Notice{Level: LevelError, Title: "Error", Text: "There was an error deleting the post."})
		return fmt.Errorf("delete post %s: %w", postID, err)
	}
	f.notify.Notify(Notice{Level: LevelSuccess, Title: "Success", Text: "Post deleted successfully"})
	if _, err := f.LoadAll(ctx); err != nil {
		return err
	}
	return nil
}
