package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"HomeLedger/internal/cli/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDoJSON_SendsBody_And_DecodesResponse(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		var m map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&m))
		assert.Equal(t, float64(1), m["x"])
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer ts.Close()

	c := NewClient(ts.URL+"/", time.Second)
	var out struct {
		OK bool `json:"ok"`
	}
	resp, err := c.DoJSON(context.Background(), http.MethodPost, "/api", map[string]any{"x": 1}, &out)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, out.OK)
}

func TestDoJSON_Non2xx_IsStatusError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "  boom  ", http.StatusBadRequest)
	}))
	defer ts.Close()

	c := NewClient(ts.URL, time.Second)
	_, err := c.DoJSON(context.Background(), http.MethodGet, "/api/items", nil, nil)
	require.Error(t, err)

	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusBadRequest, se.Code)
	assert.Equal(t, "boom", se.Body)
	assert.Equal(t, "/api/items", se.Path)
}

func TestDoJSON_EmptyBody_LeavesOutUntouched(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer ts.Close()

	var out []PostDTO
	_, err := NewClient(ts.URL, time.Second).DoJSON(context.Background(), http.MethodGet, "/x", nil, &out)
	require.NoError(t, err)
	assert.Nil(t, out)
}

func TestDoJSON_BadJSON_ReturnsDecodeError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{not json`))
	}))
	defer ts.Close()

	var out map[string]any
	_, err := NewClient(ts.URL, time.Second).DoJSON(context.Background(), http.MethodGet, "/x", nil, &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode GET /x")
}

func TestDoMultipart_SendsFieldsAndFiles(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "a b.jpg")
	require.NoError(t, os.WriteFile(p, []byte("jpegdata"), 0o600))

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, []string{"one", "two"}, r.MultipartForm.Value["k"])
		fhs := r.MultipartForm.File["files"]
		require.Len(t, fhs, 1)
		assert.Equal(t, "a b.jpg", fhs[0].Filename)
		assert.Equal(t, "image/jpeg", fhs[0].Header.Get("Content-Type"))
		f, err := fhs[0].Open()
		require.NoError(t, err)
		b, _ := io.ReadAll(f)
		_ = f.Close()
		assert.Equal(t, "jpegdata", string(b))
		_, _ = w.Write([]byte(`{"id":"p1"}`))
	}))
	defer ts.Close()

	form := &Form{}
	form.Add("k", "one")
	form.Add("k", "two")
	form.AddFile("files", model.LocalFile{Path: p, Name: "a b.jpg", MediaType: "image/jpeg"})

	var dto PostDTO
	_, err := NewClient(ts.URL, time.Second).DoMultipart(context.Background(), http.MethodPost, "/api/posts/create", form, &dto)
	require.NoError(t, err)
	assert.Equal(t, "p1", dto.ID)
}

func TestDoMultipart_MissingFile_FailsBeforeRequest(t *testing.T) {
	called := false
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer ts.Close()

	form := &Form{}
	form.AddFile("files", model.LocalFile{Path: filepath.Join(t.TempDir(), "nope.png"), Name: "nope.png"})
	_, err := NewClient(ts.URL, time.Second).DoMultipart(context.Background(), http.MethodPost, "/x", form, nil)
	require.Error(t, err)
	assert.False(t, called)
}

func TestPostFields_Progress(t *testing.T) {
	post := model.Post{
		Description: "d",
		Variant: &model.Progress{
			Title:  "t",
			Skills: []string{"lighting", "composition"},
			Resources: []model.Resource{
				{Name: "Book", Owner: "Ann", Link: "http://x"},
				{Name: "Course", Owner: "Bob", Link: "http://y"},
			},
			Challenges: "c",
			NextGoal:   "g",
		},
	}
	f := PostFields("u1", post)
	assert.Equal(t, "u1", f.Value("userId"))
	assert.Equal(t, "1", f.Value("postType"))
	assert.Equal(t, "lighting,composition", f.Value("skill"))
	assert.Equal(t, []string{"Book+Ann+http://x", "Course+Bob+http://y"}, f.Values("resources"))
	assert.Equal(t, "g", f.Value("nextGoal"))
}

func TestPostFields_Update_HasNoProgressFields(t *testing.T) {
	f := PostFields("u1", model.Post{Description: "hi", Variant: &model.Update{}})
	assert.Equal(t, "0", f.Value("postType"))
	assert.Empty(t, f.Values("title"))
	assert.Empty(t, f.Values("skill"))
}

func TestPostDTO_ToModel(t *testing.T) {
	ts := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	p, err := PostDTO{
		ID: "p", UserID: "u", PostType: 1, Title: "t", Skill: "a,b",
		Resources: []string{"n+o+l"}, CreatedAt: &ts,
	}.ToModel()
	require.NoError(t, err)
	prog, ok := p.Variant.(*model.Progress)
	require.True(t, ok)
	assert.Equal(t, []string{"a", "b"}, prog.Skills)
	assert.Equal(t, model.Resource{Name: "n", Owner: "o", Link: "l"}, prog.Resources[0])
	assert.Equal(t, ts, p.CreatedAt)

	_, err = PostDTO{ID: "x", PostType: 7}.ToModel()
	assert.ErrorIs(t, err, ErrUnknownPostType)
}
