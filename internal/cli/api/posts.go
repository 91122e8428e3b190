package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"HomeLedger/internal/cli/model"
)

// ErrUnknownPostType - postType вне известных вариантов.
var ErrUnknownPostType = errors.New("unknown postType")

// PostDTO - пост в формате API.
type PostDTO struct {
	ID          string     `json:"id"`
	UserID      string     `json:"userId"`
	Description string     `json:"description"`
	PostType    int        `json:"postType"`
	Title       string     `json:"title,omitempty"`
	Skill       string     `json:"skill,omitempty"`
	Resources   []string   `json:"resources,omitempty"`
	Challenges  string     `json:"challenges,omitempty"`
	NextGoal    string     `json:"nextGoal,omitempty"`
	MediaIDs    []string   `json:"mediaIds"`
	CreatedAt   *time.Time `json:"createdAt,omitempty"`
	UpdatedAt   *time.Time `json:"updatedAt,omitempty"`
}

// ToModel переводит DTO в модель поста с вариантом.
func (d PostDTO) ToModel() (model.Post, error) {
	p := model.Post{
		ID:          d.ID,
		UserID:      d.UserID,
		Description: d.Description,
		MediaIDs:    d.MediaIDs,
	}
	if d.CreatedAt != nil {
		p.CreatedAt = *d.CreatedAt
	}
	if d.UpdatedAt != nil {
		p.UpdatedAt = *d.UpdatedAt
	}
	switch model.PostType(d.PostType) {
	case model.PostTypeUpdate:
		p.Variant = &model.Update{}
	case model.PostTypeProgress:
		res := make([]model.Resource, 0, len(d.Resources))
		for _, r := range d.Resources {
			res = append(res, model.ParseResource(r))
		}
		p.Variant = &model.Progress{
			Title:      d.Title,
			Skills:     model.SplitSkills(d.Skill),
			Resources:  res,
			Challenges: d.Challenges,
			NextGoal:   d.NextGoal,
		}
	default:
		return model.Post{}, fmt.Errorf("post %s: %w %d", d.ID, ErrUnknownPostType, d.PostType)
	}
	return p, nil
}

// PostFields собирает текстовую часть отправки при создании и правке. Поля варианта
// сериализуются здесь: навыки через запятую, ресурсы строками name+owner+link.
func PostFields(userID string, p model.Post) *Form {
	f := &Form{}
	f.Add("userId", userID)
	f.Add("description", p.Description)
	f.Add("postType", strconv.Itoa(int(p.Type())))
	switch v := p.Variant.(type) {
	case nil, *model.Update:
		// только общие поля
	case *model.Progress:
		f.Add("title", v.Title)
		f.Add("skill", model.JoinSkills(v.Skills))
		for _, r := range v.Resources {
			f.Add("resources", r.String())
		}
		f.Add("challenges", v.Challenges)
		f.Add("nextGoal", v.NextGoal)
	}
	return f
}

func postPath(userID, postID string) string {
	return "/api/posts/" + url.PathEscape(userID) + "/" + url.PathEscape(postID)
}

func toModels(dtos []PostDTO) ([]model.Post, error) {
	out := make([]model.Post, 0, len(dtos))
	for _, d := range dtos {
		p, err := d.ToModel()
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// ListPosts возвращает всю ленту в порядке хранилища; 204 - пустая лента.
func (c *Client) ListPosts(ctx context.Context) ([]model.Post, error) {
	var dtos []PostDTO
	if _, err := c.DoJSON(ctx, http.MethodGet, "/api/posts/all", nil, &dtos); err != nil {
		return nil, err
	}
	return toModels(dtos)
}

// CreatePost отправляет поля и файлы (multipart-поле "files").
func (c *Client) CreatePost(ctx context.Context, form *Form, files []model.LocalFile) (model.Post, error) {
	for _, f := range files {
		form.AddFile("files", f)
	}
	var dto PostDTO
	if _, err := c.DoMultipart(ctx, http.MethodPost, "/api/posts/create", form, &dto); err != nil {
		return model.Post{}, err
	}
	return dto.ToModel()
}

// GetPost загружает один пост пользователя.
func (c *Client) GetPost(ctx context.Context, userID, postID string) (model.Post, error) {
	var dto PostDTO
	if _, err := c.DoJSON(ctx, http.MethodGet, postPath(userID, postID), nil, &dto); err != nil {
		return model.Post{}, err
	}
	return dto.ToModel()
}

// UpdatePost отправляет все поля и дельту вложений.
func (c *Client) UpdatePost(ctx context.Context, userID, postID string, form *Form, toDelete []string, toAdd []model.LocalFile) error {
	for _, name := range toDelete {
		form.Add("toBeDeletedMediaIds", name)
	}
	for _, f := range toAdd {
		form.AddFile("newFiles", f)
	}
	_, err := c.DoMultipart(ctx, http.MethodPut, postPath(userID, postID), form, nil)
	return err
}

// DeletePost удаляет пост.
func (c *Client) DeletePost(ctx context.Context, userID, postID string) error {
	_, err := c.DoJSON(ctx, http.MethodDelete, postPath(userID, postID), nil, nil)
	return err
}

// FetchMedia скачивает сохранённый файл в w и возвращает его content type.
func (c *Client) FetchMedia(ctx context.Context, filename string, w io.Writer) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/api/posts/media/"+url.PathEscape(filename), nil)
	if err != nil {
		return "", err
	}
	resp, err := c.httpClient().Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return "", &StatusError{Method: req.Method, Path: req.URL.Path, Code: resp.StatusCode, Body: string(b)}
	}
	if _, err := io.Copy(w, resp.Body); err != nil {
		return "", err
	}
	return resp.Header.Get("Content-Type"), nil
}
