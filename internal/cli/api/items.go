package api

import (
	"context"
	"net/http"
	"net/url"

	"HomeLedger/internal/cli/model"
)

// IncreaseRequest - тело PATCH /api/items/{id}/increase.
type IncreaseRequest struct {
	Quantity      float64     `json:"quantity"`
	PurchasedDate model.Date  `json:"purchasedDate"`
	ExpDate       *model.Date `json:"expDate,omitempty"`
}

// DecreaseRequest - тело PATCH /api/items/{id}/decrease.
type DecreaseRequest struct {
	Quantity float64 `json:"quantity"`
}

func itemPath(id string) string {
	return "/api/items/" + url.PathEscape(id)
}

// ListItems возвращает все items владельца.
func (c *Client) ListItems(ctx context.Context, ownerID string) ([]model.Item, error) {
	var items []model.Item
	q := url.Values{"user_id": {ownerID}}
	if _, err := c.DoJSON(ctx, http.MethodGet, "/api/items?"+q.Encode(), nil, &items); err != nil {
		return nil, err
	}
	if items == nil {
		items = []model.Item{}
	}
	return items, nil
}

// CreateItem отправляет полную запись и возвращает сохранённую (с id).
func (c *Client) CreateItem(ctx context.Context, it model.Item) (model.Item, error) {
	var created model.Item
	if _, err := c.DoJSON(ctx, http.MethodPost, "/api/items", it, &created); err != nil {
		return model.Item{}, err
	}
	return created, nil
}

// ReplaceItem заменяет item целиком.
func (c *Client) ReplaceItem(ctx context.Context, it model.Item) error {
	_, err := c.DoJSON(ctx, http.MethodPut, itemPath(it.ID), it, nil)
	return err
}

// DeleteItem удаляет item.
func (c *Client) DeleteItem(ctx context.Context, id string) error {
	_, err := c.DoJSON(ctx, http.MethodDelete, itemPath(id), nil, nil)
	return err
}

// IncreaseItem добавляет количество и обновляет даты покупки и годности.
func (c *Client) IncreaseItem(ctx context.Context, id string, req IncreaseRequest) error {
	_, err := c.DoJSON(ctx, http.MethodPatch, itemPath(id)+"/increase", req, nil)
	return err
}

// DecreaseItem вычитает количество; уход в минус разрешает или запрещает хранилище.
func (c *Client) DecreaseItem(ctx context.Context, id string, req DecreaseRequest) error {
	_, err := c.DoJSON(ctx, http.MethodPatch, itemPath(id)+"/decrease", req, nil)
	return err
}
