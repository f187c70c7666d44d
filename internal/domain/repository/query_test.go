package repository

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"travel-booking-service/pkg/apperror"
)

func TestValidateQuery(t *testing.T) {
	manyValues := make([]string, MaxInValues+1)
	for i := range manyValues {
		manyValues[i] = "v"
	}

	tests := []struct {
		name    string
		query   Query
		wantErr bool
	}{
		{
			name:  "equality and ordering",
			query: Query{Where: []Filter{Where("userId", OpEqual, "u1")}, OrderBy: []Order{OrderBy("createdAt", Desc)}},
		},
		{
			name: "range on one field ordered by it",
			query: Query{
				Where:   []Filter{Where("totalPrice", OpGreaterEqual, 10), Where("totalPrice", OpLess, 100)},
				OrderBy: []Order{OrderBy("totalPrice", Asc), OrderBy("createdAt", Desc)},
			},
		},
		{
			name:  "in with list",
			query: Query{Where: []Filter{Where("status", OpIn, []string{"pending", "confirmed"})}},
		},
		{
			name:    "unknown operator",
			query:   Query{Where: []Filter{Where("status", Operator("like"), "p%")}},
			wantErr: true,
		},
		{
			name:    "empty field",
			query:   Query{Where: []Filter{Where("", OpEqual, "x")}},
			wantErr: true,
		},
		{
			name:    "in with scalar",
			query:   Query{Where: []Filter{Where("status", OpIn, "pending")}},
			wantErr: true,
		},
		{
			name:    "in with empty list",
			query:   Query{Where: []Filter{Where("status", OpIn, []string{})}},
			wantErr: true,
		},
		{
			name:    "in with too many values",
			query:   Query{Where: []Filter{Where("status", OpIn, manyValues)}},
			wantErr: true,
		},
		{
			name:    "inequality on two fields",
			query:   Query{Where: []Filter{Where("totalPrice", OpGreater, 1), Where("createdAt", OpLess, "2026")}},
			wantErr: true,
		},
		{
			name: "ordering by a field other than the inequality field",
			query: Query{
				Where:   []Filter{Where("totalPrice", OpGreater, 1)},
				OrderBy: []Order{OrderBy("createdAt", Asc)},
			},
			wantErr: true,
		},
		{
			name:    "bad direction",
			query:   Query{OrderBy: []Order{{Field: "createdAt", Direction: "up"}}},
			wantErr: true,
		},
		{
			name:    "negative limit",
			query:   Query{Limit: -1},
			wantErr: true,
		},
		{
			name: "cursor arity mismatch",
			query: Query{
				OrderBy:    []Order{OrderBy("createdAt", Asc)},
				StartAfter: &Cursor{Values: []interface{}{"a", "b"}, ID: "x"},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateQuery(tt.query)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, apperror.ErrQuery))
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestEffectiveOrder(t *testing.T) {
	t.Run("no ordering falls back to id", func(t *testing.T) {
		assert.Equal(t, []Order{{Field: IDField, Direction: Asc}}, EffectiveOrder(Query{}))
	})

	t.Run("inequality field becomes the implicit ordering", func(t *testing.T) {
		q := Query{Where: []Filter{Where("totalPrice", OpGreater, 5)}}
		assert.Equal(t, []Order{
			{Field: "totalPrice", Direction: Asc},
			{Field: IDField, Direction: Asc},
		}, EffectiveOrder(q))
	})

	t.Run("tie-breaker follows the last direction", func(t *testing.T) {
		q := Query{OrderBy: []Order{OrderBy("createdAt", Desc)}}
		assert.Equal(t, []Order{
			{Field: "createdAt", Direction: Desc},
			{Field: IDField, Direction: Desc},
		}, EffectiveOrder(q))
	})
}

func TestNormalizeAndCursorTuple(t *testing.T) {
	q := Normalize(Query{Where: []Filter{Where("totalPrice", OpGreater, 5)}})
	require.Equal(t, []Order{{Field: "totalPrice", Direction: Asc}}, q.OrderBy)

	doc := &Document{ID: "d1", Data: map[string]interface{}{"totalPrice": 7.0}}
	c := CursorFor(doc, q.OrderBy)
	assert.Equal(t, []interface{}{7.0}, c.Values)
	assert.Equal(t, "d1", c.ID)
	assert.Equal(t, []interface{}{7.0, "d1"}, CursorTuple(EffectiveOrder(q), c))

	explicit := Normalize(Query{OrderBy: []Order{OrderBy(IDField, Desc)}})
	idCursor := CursorFor(doc, explicit.OrderBy)
	assert.Equal(t, []interface{}{"d1"}, CursorTuple(EffectiveOrder(explicit), idCursor))
}
