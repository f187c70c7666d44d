package repository

import (
	"reflect"
	"strings"

	"travel-booking-service/pkg/apperror"
)

// Operator is a filter comparison
type Operator string

const (
	OpEqual         Operator = "=="
	OpNotEqual      Operator = "!="
	OpLess          Operator = "<"
	OpLessEqual     Operator = "<="
	OpGreater       Operator = ">"
	OpGreaterEqual  Operator = ">="
	OpIn            Operator = "in"
	OpNotIn         Operator = "not-in"
	OpArrayContains Operator = "array-contains"
)

// Direction is a sort direction
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// IDField addresses the document id in filters and orderings
const IDField = "id"

// MaxInValues bounds the list size of in / not-in filters
const MaxInValues = 30

// Filter is one (field, operator, value) triple
type Filter struct {
	Field string
	Op    Operator
	Value interface{}
}

// Order is one (field, direction) pair
type Order struct {
	Field     string
	Direction Direction
}

// Cursor marks the last document of a page: the values of its ordering fields
// followed by its id. It is store independent.
type Cursor struct {
	Values []interface{} `json:"v"`
	ID     string        `json:"id"`
}

// Query is the store-level query. Where filters are ANDed, OrderBy is applied in order.
type Query struct {
	Where      []Filter
	OrderBy    []Order
	Limit      int
	StartAfter *Cursor
}

// Where builds a filter
func Where(field string, op Operator, value interface{}) Filter {
	return Filter{Field: field, Op: op, Value: value}
}

// OrderBy builds an ordering; an empty direction means ascending
func OrderBy(field string, dir Direction) Order {
	if dir == "" {
		dir = Asc
	}
	return Order{Field: field, Direction: dir}
}

func isInequality(op Operator) bool {
	switch op {
	case OpNotEqual, OpLess, OpLessEqual, OpGreater, OpGreaterEqual, OpNotIn:
		return true
	}
	return false
}

func isKnownOperator(op Operator) bool {
	switch op {
	case OpEqual, OpNotEqual, OpLess, OpLessEqual, OpGreater, OpGreaterEqual, OpIn, OpNotIn, OpArrayContains:
		return true
	}
	return false
}

// ValidateQuery rejects query shapes the document store cannot serve. It runs before
// any I/O so malformed queries never degrade into empty results.
func ValidateQuery(q Query) error {
	if q.Limit < 0 {
		return apperror.Query("limit must not be negative, got %d", q.Limit)
	}

	inequalityField := ""
	for _, f := range q.Where {
		if f.Field == "" {
			return apperror.Query("filter field must not be empty")
		}
		if !isKnownOperator(f.Op) {
			return apperror.Query("unsupported operator %q on field %s", f.Op, f.Field)
		}
		if f.Op == OpIn || f.Op == OpNotIn {
			n, ok := listLen(f.Value)
			if !ok {
				return apperror.Query("operator %s on field %s requires a list value", f.Op, f.Field)
			}
			if n == 0 {
				return apperror.Query("operator %s on field %s requires a non-empty list", f.Op, f.Field)
			}
			if n > MaxInValues {
				return apperror.Query("operator %s on field %s accepts at most %d values", f.Op, f.Field, MaxInValues)
			}
		}
		if isInequality(f.Op) {
			if inequalityField != "" && inequalityField != f.Field {
				return apperror.Query("inequality filters on multiple fields (%s, %s) are not supported", inequalityField, f.Field)
			}
			inequalityField = f.Field
		}
	}

	for _, o := range q.OrderBy {
		if o.Field == "" {
			return apperror.Query("orderBy field must not be empty")
		}
		if o.Direction != Asc && o.Direction != Desc {
			return apperror.Query("invalid direction %q for field %s", o.Direction, o.Field)
		}
	}

	if inequalityField != "" && len(q.OrderBy) > 0 && q.OrderBy[0].Field != inequalityField {
		return apperror.Query("first orderBy must be %s because it has an inequality filter, got %s",
			inequalityField, q.OrderBy[0].Field)
	}

	if q.StartAfter != nil && len(q.StartAfter.Values) != len(q.OrderBy) {
		return apperror.Query("cursor has %d values but the query orders by %d fields",
			len(q.StartAfter.Values), len(q.OrderBy))
	}

	return nil
}

// EffectiveOrder returns the total ordering a store must apply: the explicit orderBy,
// the inequality field when no orderBy is given, and the id as the final tie-breaker
// using the direction of the last ordering.
func EffectiveOrder(q Query) []Order {
	orders := make([]Order, 0, len(q.OrderBy)+2)
	orders = append(orders, q.OrderBy...)

	if len(orders) == 0 {
		for _, f := range q.Where {
			if isInequality(f.Op) {
				orders = append(orders, Order{Field: f.Field, Direction: Asc})
				break
			}
		}
	}

	dir := Asc
	if len(orders) > 0 {
		dir = orders[len(orders)-1].Direction
		if orders[len(orders)-1].Field == IDField {
			return orders
		}
	}
	return append(orders, Order{Field: IDField, Direction: dir})
}

// Normalize makes the implicit inequality ordering explicit so cursors built from
// a page always match the ordering they are replayed against. The id tie-breaker
// stays implicit.
func Normalize(q Query) Query {
	orders := EffectiveOrder(q)
	explicitID := len(q.OrderBy) > 0 && q.OrderBy[len(q.OrderBy)-1].Field == IDField
	if !explicitID {
		orders = orders[:len(orders)-1]
	}
	q.OrderBy = orders
	return q
}

// CursorTuple lines the cursor up with the effective ordering
func CursorTuple(orders []Order, c *Cursor) []interface{} {
	tuple := make([]interface{}, 0, len(orders))
	tuple = append(tuple, c.Values...)
	if len(tuple) < len(orders) {
		tuple = append(tuple, c.ID)
	}
	return tuple
}

// CursorFor builds the cursor positioned on doc under the user-visible ordering
func CursorFor(doc *Document, orderBy []Order) *Cursor {
	values := make([]interface{}, 0, len(orderBy))
	for _, o := range orderBy {
		if o.Field == IDField {
			values = append(values, doc.ID)
			continue
		}
		v, _ := FieldValue(doc.Data, o.Field)
		values = append(values, v)
	}
	return &Cursor{Values: values, ID: doc.ID}
}

func listLen(v interface{}) (int, bool) {
	if v == nil {
		return 0, false
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return 0, false
	}
	return rv.Len(), true
}

// ListValues flattens a slice of any element type into []interface{}
func ListValues(v interface{}) []interface{} {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil
	}
	out := make([]interface{}, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		out[i] = rv.Index(i).Interface()
	}
	return out
}

// FieldValue resolves a dotted path ("flight.departureDate") inside a document
func FieldValue(data map[string]interface{}, path string) (interface{}, bool) {
	var cur interface{} = data
	for _, part := range strings.Split(path, ".") {
		m, ok := cur.(map[string]interface{})
		if !ok {
			return nil, false
		}
		if cur, ok = m[part]; !ok {
			return nil, false
		}
	}
	return cur, true
}
