package api_test

import (
	"bytes"
	"context"
	"net/http"
	"testing"
	"time"

	"HomeLedger/internal/cli/api"
	"HomeLedger/internal/cli/model"
	"HomeLedger/internal/cli/remotetest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClient(t *testing.T) (*api.Client, *remotetest.Store) {
	t.Helper()
	st := remotetest.New()
	srv := st.Start()
	t.Cleanup(srv.Close)
	return api.NewClient(srv.URL, 5*time.Second), st
}

func TestItems_CRUD(t *testing.T) {
	c, st := newClient(t)
	ctx := context.Background()

	created, err := c.CreateItem(ctx, model.Item{Code: "ITM_00001", Name: "Rice", UOM: model.UOMKilograms, Qty: 2, OwnerID: "u1"})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	st.PutItem(model.Item{Name: "Other", OwnerID: "u2"})

	items, err := c.ListItems(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Rice", items[0].Name)

	require.NoError(t, c.IncreaseItem(ctx, created.ID, api.IncreaseRequest{
		Quantity:      3,
		PurchasedDate: model.NewDate(time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)),
	}))
	require.NoError(t, c.DecreaseItem(ctx, created.ID, api.DecreaseRequest{Quantity: 1}))
	got, _ := st.Item(created.ID)
	assert.Equal(t, 4.0, got.Qty)
	assert.Equal(t, "2024-01-02", got.PurchasedDate.String())

	got.Name = "Basmati"
	require.NoError(t, c.ReplaceItem(ctx, got))
	got, _ = st.Item(created.ID)
	assert.Equal(t, "Basmati", got.Name)

	require.NoError(t, c.DeleteItem(ctx, created.ID))
	_, ok := st.Item(created.ID)
	assert.False(t, ok)
}

func TestListItems_EmptyIsNotNil(t *testing.T) {
	c, _ := newClient(t)
	items, err := c.ListItems(context.Background(), "nobody")
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}

func TestDecrease_StoreRejects(t *testing.T) {
	c, st := newClient(t)
	it := st.PutItem(model.Item{Name: "Milk", Qty: 1, OwnerID: "u1"})
	err := c.DecreaseItem(context.Background(), it.ID, api.DecreaseRequest{Quantity: 5})
	var se *api.StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusBadRequest, se.Code)
}

func TestListPosts_NoContentIsEmptyFeed(t *testing.T) {
	c, _ := newClient(t)
	posts, err := c.ListPosts(context.Background())
	require.NoError(t, err)
	assert.Empty(t, posts)
}

func TestPosts_CreateUpdateDelete(t *testing.T) {
	c, st := newClient(t)
	ctx := context.Background()
	st.PutMedia("a.jpg", []byte("old"))

	post := model.Post{Description: "first", Variant: &model.Update{}}
	created, err := c.CreatePost(ctx, api.PostFields("u1", post), nil)
	require.NoError(t, err)
	assert.Equal(t, "first", created.Description)
	assert.Empty(t, created.MediaIDs)

	dto, _ := st.Post(created.ID)
	dto.MediaIDs = []string{"a.jpg"}
	st.PutPost(dto)

	post.Description = "edited"
	require.NoError(t, c.UpdatePost(ctx, "u1", created.ID, api.PostFields("u1", post), []string{"a.jpg"}, nil))
	got, err := c.GetPost(ctx, "u1", created.ID)
	require.NoError(t, err)
	assert.Equal(t, "edited", got.Description)
	assert.Empty(t, got.MediaIDs)
	assert.False(t, st.HasMedia("a.jpg"))
	assert.Equal(t, []string{"a.jpg"}, st.LastForm(remotetest.RouteUpdatePost).Fields["toBeDeletedMediaIds"])

	var se *api.StatusError
	require.ErrorAs(t, c.DeletePost(ctx, "u2", created.ID), &se)
	assert.Equal(t, http.StatusForbidden, se.Code)

	require.NoError(t, c.DeletePost(ctx, "u1", created.ID))
	_, ok := st.Post(created.ID)
	assert.False(t, ok)
}

func TestFetchMedia(t *testing.T) {
	c, st := newClient(t)
	st.PutMedia("clip.mp4", []byte("data"))

	var buf bytes.Buffer
	_, err := c.FetchMedia(context.Background(), "clip.mp4", &buf)
	require.NoError(t, err)
	assert.Equal(t, "data", buf.String())

	_, err = c.FetchMedia(context.Background(), "missing.png", &buf)
	var se *api.StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusNotFound, se.Code)
}
