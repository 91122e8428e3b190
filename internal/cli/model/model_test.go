package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestItem_LowStock(t *testing.T) {
	it := Item{Qty: 7, ReorderLevel: 5}
	assert.False(t, it.LowStock())
	it.Qty = 5
	assert.True(t, it.LowStock(), "равенство уровню дозаказа считается низким остатком")
	it.Qty = 4
	assert.True(t, it.LowStock())
}

func TestItem_Matches_AnyField(t *testing.T) {
	exp := NewDate(time.Date(2030, 1, 2, 0, 0, 0, 0, time.UTC))
	it := Item{
		ID:            "abc123",
		Code:          "ITM_0A1B2",
		Name:          "Milk",
		Desc:          "Semi skimmed",
		Type:          "Dairy",
		UOM:           UOMLiters,
		Qty:           2.5,
		Price:         1.2,
		ExpDate:       &exp,
		PurchasedDate: NewDate(time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)),
		OwnerID:       "u1",
	}
	assert.True(t, it.Matches("milk"))
	assert.True(t, it.Matches("SKIMMED"))
	assert.True(t, it.Matches("itm_0a"))
	assert.True(t, it.Matches("2030-01"))
	assert.True(t, it.Matches("2.5"))
	assert.True(t, it.Matches("ltr"))
	assert.False(t, it.Matches("bread"))
}

func TestDate_JSON(t *testing.T) {
	var d Date
	require.NoError(t, json.Unmarshal([]byte(`"2024-03-05T00:00:00.000Z"`), &d))
	assert.Equal(t, "2024-03-05", d.String())

	require.NoError(t, json.Unmarshal([]byte(`null`), &d))
	assert.True(t, d.IsZero())

	b, err := json.Marshal(NewDate(time.Date(2024, 12, 31, 23, 0, 0, 0, time.UTC)))
	require.NoError(t, err)
	assert.Equal(t, `"2024-12-31"`, string(b))

	assert.Error(t, json.Unmarshal([]byte(`"31/12/2024"`), &d))
}

func TestDate_Ordering(t *testing.T) {
	a, err := ParseDate("2024-01-01")
	require.NoError(t, err)
	b, err := ParseDate("2024-01-02")
	require.NoError(t, err)
	assert.True(t, a.Before(b))
	assert.True(t, b.After(a))
	assert.False(t, a.Before(a))
}

func TestKindOfFilename(t *testing.T) {
	assert.Equal(t, MediaVideo, KindOfFilename("20240101_clip.MP4"))
	assert.Equal(t, MediaVideo, KindOfFilename("a.webm"))
	assert.Equal(t, MediaImage, KindOfFilename("a.jpg"))
	assert.Equal(t, MediaImage, KindOfFilename("noext"))
	assert.Equal(t, MediaVideo, KindOfMediaType("video/quicktime"))
	assert.Equal(t, MediaImage, KindOfMediaType("application/pdf"))
}

func TestResource_RoundTrip(t *testing.T) {
	r := Resource{Name: "Light basics", Owner: "Anna", Link: "https://x.test/a+b"}
	s := r.String()
	assert.Equal(t, "Light basics+Anna+https://x.test/a+b", s)
	assert.Equal(t, r, ParseResource(s))
	assert.Equal(t, Resource{Name: "only"}, ParseResource("only"))
}

func TestSkills(t *testing.T) {
	assert.Equal(t, "lighting,composition", JoinSkills([]string{"lighting", "composition"}))
	assert.Equal(t, []string{"lighting", "composition"}, SplitSkills("lighting, composition,"))
	assert.Nil(t, SplitSkills(" "))
}

func TestPost_Type(t *testing.T) {
	assert.Equal(t, PostTypeUpdate, Post{}.Type())
	assert.Equal(t, PostTypeUpdate, Post{Variant: &Update{}}.Type())
	assert.Equal(t, PostTypeProgress, Post{Variant: &Progress{Title: "x"}}.Type())
}
