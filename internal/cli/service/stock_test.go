package service

import (
	"math"
	"testing"

	"HomeLedger/internal/cli/model"
	"HomeLedger/internal/cli/validate"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEngine_Increase_Defaults(t *testing.T) {
	e := testEngine()
	exp := date(t, "2024-12-31")
	cur := model.Item{ID: "i", UOM: model.UOMKilograms, ExpDate: &exp}

	tx, err := e.Prepare(Increase{ID: "i", Amount: 1.5}, cur)
	require.NoError(t, err)
	inc := tx.(Increase)
	assert.Equal(t, "2024-06-15", inc.PurchasedDate.String())
	require.NotNil(t, inc.ExpDate)
	assert.Equal(t, "2024-12-31", inc.ExpDate.String())
}

func TestEngine_Increase_DateRules(t *testing.T) {
	e := testEngine()
	cur := model.Item{ID: "i", UOM: model.UOMKilograms}

	_, err := e.Prepare(Increase{ID: "i", Amount: 1, PurchasedDate: date(t, "2024-06-16")}, cur)
	var fe *validate.FieldError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, validate.FieldPurchasedDate, fe.Field)

	past := date(t, "2024-06-14")
	_, err = e.Prepare(Increase{ID: "i", Amount: 1, ExpDate: &past}, cur)
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, validate.FieldExpDate, fe.Field)

	today := date(t, "2024-06-15")
	_, err = e.Prepare(Increase{ID: "i", Amount: 1, PurchasedDate: today, ExpDate: &today}, cur)
	assert.NoError(t, err)
}

func TestEngine_Increase_AmountRules(t *testing.T) {
	e := testEngine()
	units := model.Item{ID: "i", UOM: model.UOMUnits}
	for _, a := range []float64{0, -2, 1.5} {
		_, err := e.Prepare(Increase{ID: "i", Amount: a}, units)
		assert.Error(t, err, "amount %v", a)
	}
	_, err := e.Prepare(Increase{ID: "i", Amount: 2}, units)
	assert.NoError(t, err)
}

func TestEngine_RejectsNonFiniteAmounts(t *testing.T) {
	e := testEngine()
	cur := model.Item{ID: "i", UOM: model.UOMKilograms, Qty: 1}
	for _, a := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		var fe *validate.FieldError
		_, err := e.Prepare(Increase{ID: "i", Amount: a}, cur)
		assert.ErrorAs(t, err, &fe, "increase %v", a)
		_, err = e.Prepare(Decrease{ID: "i", Amount: a}, cur)
		assert.ErrorAs(t, err, &fe, "decrease %v", a)
	}
}

func TestEngine_Decrease(t *testing.T) {
	e := testEngine()
	cur := model.Item{ID: "i", UOM: model.UOMKilograms, Qty: 1}

	_, err := e.Prepare(Decrease{ID: "i", Amount: -1}, cur)
	var fe *validate.FieldError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "Quantity cannot be less than zero", fe.Message)

	// хранилище решает, можно ли уйти в минус
	_, err = e.Prepare(Decrease{ID: "i", Amount: 5}, cur)
	assert.NoError(t, err)
}

func TestEngine_Edit_ClearExpiry(t *testing.T) {
	e := testEngine()
	exp := date(t, "2025-01-01")
	cur := model.Item{ID: "i", Name: "Milk", UOM: model.UOMLiters, Qty: 1.5, ExpDate: &exp}
	zero := model.Date{}
	it, err := e.replacement(ItemPatch{ExpDate: &zero}, cur)
	require.NoError(t, err)
	assert.Nil(t, it.ExpDate)
	assert.Equal(t, 1.5, it.Qty)
}

func TestItemPatch_Empty(t *testing.T) {
	assert.True(t, ItemPatch{}.Empty())
	assert.False(t, ItemPatch{Name: strPtr("x")}.Empty())
}

func TestTexts(t *testing.T) {
	cur := model.Item{Name: "Rice", Code: "ITM_0000A"}
	assert.Equal(t, "Added quantity to Rice (Code: ITM_0000A)\nIncreased Quantity By: 2.5", SuccessText(Increase{Amount: 2.5}, cur))
	assert.Equal(t, "There was an error increasing the item quantity.", FailureText(Increase{}, cur))
	assert.Equal(t, "delete", Action(Delete{}))
}
