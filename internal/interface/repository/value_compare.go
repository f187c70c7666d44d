package repository

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"

	"travel-booking-service/internal/domain/repository"
)

// type classes in sort order; values of different classes never compare equal
const (
	classNull = iota
	classBool
	classNumber
	classString
	classList
	classMap
	classOther
)

func valueClass(v interface{}) int {
	switch v.(type) {
	case nil:
		return classNull
	case bool:
		return classBool
	case string:
		return classString
	case []interface{}:
		return classList
	case map[string]interface{}:
		return classMap
	}
	if _, ok := toFloat(v); ok {
		return classNumber
	}
	return classOther
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

// compareValues orders two document values: null < bool < number < string < list < map.
// Numbers compare by value regardless of Go type.
func compareValues(a, b interface{}) int {
	ca, cb := valueClass(a), valueClass(b)
	if ca != cb {
		return cmpInt(ca, cb)
	}
	switch ca {
	case classNull:
		return 0
	case classBool:
		ba, bb := a.(bool), b.(bool)
		if ba == bb {
			return 0
		}
		if !ba {
			return -1
		}
		return 1
	case classNumber:
		fa, _ := toFloat(a)
		fb, _ := toFloat(b)
		switch {
		case fa < fb:
			return -1
		case fa > fb:
			return 1
		case math.IsNaN(fa) && !math.IsNaN(fb):
			return -1
		case !math.IsNaN(fa) && math.IsNaN(fb):
			return 1
		}
		return 0
	case classString:
		sa, sb := a.(string), b.(string)
		switch {
		case sa < sb:
			return -1
		case sa > sb:
			return 1
		}
		return 0
	case classList:
		la, lb := a.([]interface{}), b.([]interface{})
		for i := 0; i < len(la) && i < len(lb); i++ {
			if c := compareValues(la[i], lb[i]); c != 0 {
				return c
			}
		}
		return cmpInt(len(la), len(lb))
	}
	if reflect.DeepEqual(a, b) {
		return 0
	}
	sa, sb := fmt.Sprint(a), fmt.Sprint(b)
	switch {
	case sa < sb:
		return -1
	case sa > sb:
		return 1
	}
	return 0
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func valuesEqual(a, b interface{}) bool {
	return valueClass(a) == valueClass(b) && compareValues(a, b) == 0
}

// normalizeValue converts caller-supplied values (typed slices, ints) into the
// JSON-shaped representation documents are stored in
func normalizeValue(v interface{}) interface{} {
	raw, err := json.Marshal(v)
	if err != nil {
		return v
	}
	var out interface{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return v
	}
	return out
}

// matchFilter evaluates one filter against a document. Missing fields read as null.
func matchFilter(doc *repository.Document, f repository.Filter) bool {
	actual := fieldOf(doc, f.Field)
	want := normalizeValue(f.Value)

	switch f.Op {
	case repository.OpEqual:
		return valuesEqual(actual, want)
	case repository.OpNotEqual:
		return !valuesEqual(actual, want)
	case repository.OpLess, repository.OpLessEqual, repository.OpGreater, repository.OpGreaterEqual:
		if actual == nil || valueClass(actual) != valueClass(want) {
			return false
		}
		c := compareValues(actual, want)
		switch f.Op {
		case repository.OpLess:
			return c < 0
		case repository.OpLessEqual:
			return c <= 0
		case repository.OpGreater:
			return c > 0
		default:
			return c >= 0
		}
	case repository.OpIn, repository.OpNotIn:
		found := false
		for _, candidate := range repository.ListValues(f.Value) {
			if valuesEqual(actual, normalizeValue(candidate)) {
				found = true
				break
			}
		}
		if f.Op == repository.OpIn {
			return found
		}
		return !found
	case repository.OpArrayContains:
		list, ok := actual.([]interface{})
		if !ok {
			return false
		}
		for _, item := range list {
			if valuesEqual(item, want) {
				return true
			}
		}
		return false
	}
	return false
}

func fieldOf(doc *repository.Document, field string) interface{} {
	if field == repository.IDField {
		return doc.ID
	}
	v, _ := repository.FieldValue(doc.Data, field)
	return v
}

// compareDocs orders two documents under orders
func compareDocs(a, b *repository.Document, orders []repository.Order) int {
	for _, o := range orders {
		c := compareValues(fieldOf(a, o.Field), fieldOf(b, o.Field))
		if o.Direction == repository.Desc {
			c = -c
		}
		if c != 0 {
			return c
		}
	}
	return 0
}

// isAfterCursor reports whether doc sorts strictly after the cursor tuple
func isAfterCursor(doc *repository.Document, orders []repository.Order, tuple []interface{}) bool {
	for i, o := range orders {
		c := compareValues(fieldOf(doc, o.Field), normalizeValue(tuple[i]))
		if o.Direction == repository.Desc {
			c = -c
		}
		if c != 0 {
			return c > 0
		}
	}
	return false
}
