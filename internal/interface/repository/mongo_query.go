package repository

import (
	"fmt"

	"go.mongodb.org/mongo-driver/bson"

	"travel-booking-service/internal/domain/repository"
)

// mongoField maps the logical id onto Mongo's primary key
func mongoField(field string) string {
	if field == repository.IDField {
		return "_id"
	}
	return field
}

var mongoOperators = map[repository.Operator]string{
	repository.OpEqual:        "$eq",
	repository.OpNotEqual:     "$ne",
	repository.OpLess:         "$lt",
	repository.OpLessEqual:    "$lte",
	repository.OpGreater:      "$gt",
	repository.OpGreaterEqual: "$gte",
	repository.OpIn:           "$in",
	repository.OpNotIn:        "$nin",
}

// buildMongoFilter translates the where clause and cursor into one filter document.
// Every clause is ANDed explicitly so several filters on the same field survive.
func buildMongoFilter(q repository.Query, orders []repository.Order) (bson.M, error) {
	clauses := make([]bson.M, 0, len(q.Where)+1)
	for _, f := range q.Where {
		clause, err := mongoClause(f)
		if err != nil {
			return nil, err
		}
		clauses = append(clauses, clause)
	}

	if q.StartAfter != nil {
		tuple := repository.CursorTuple(orders, q.StartAfter)
		if len(tuple) != len(orders) {
			return nil, fmt.Errorf("cursor has %d values for %d orderings", len(tuple), len(orders))
		}
		clauses = append(clauses, buildCursorFilter(orders, tuple))
	}

	switch len(clauses) {
	case 0:
		return bson.M{}, nil
	case 1:
		return clauses[0], nil
	}
	return bson.M{"$and": clauses}, nil
}

func mongoClause(f repository.Filter) (bson.M, error) {
	field := mongoField(f.Field)
	switch f.Op {
	case repository.OpArrayContains:
		return bson.M{field: bson.M{"$elemMatch": bson.M{"$eq": f.Value}}}, nil
	case repository.OpIn, repository.OpNotIn:
		return bson.M{field: bson.M{mongoOperators[f.Op]: repository.ListValues(f.Value)}}, nil
	}
	op, ok := mongoOperators[f.Op]
	if !ok {
		return nil, fmt.Errorf("unsupported operator %q", f.Op)
	}
	return bson.M{field: bson.M{op: f.Value}}, nil
}

// buildMongoSort renders the effective ordering, id last
func buildMongoSort(orders []repository.Order) bson.D {
	sort := make(bson.D, 0, len(orders))
	for _, o := range orders {
		dir := 1
		if o.Direction == repository.Desc {
			dir = -1
		}
		sort = append(sort, bson.E{Key: mongoField(o.Field), Value: dir})
	}
	return sort
}

// buildCursorFilter expresses "sorts strictly after tuple" as a keyset disjunction:
// (o1 > t1) OR (o1 = t1 AND o2 > t2) OR ...
// Null and missing values sort first, as in the memory store, but Mongo comparison
// operators never match across types, so null needs its own terms.
func buildCursorFilter(orders []repository.Order, tuple []interface{}) bson.M {
	branches := make([]bson.M, 0, len(orders))
	for i, o := range orders {
		after, ok := afterValue(o, tuple[i])
		if !ok {
			continue
		}
		branch := bson.M{}
		for j := 0; j < i; j++ {
			branch[mongoField(orders[j].Field)] = bson.M{"$eq": tuple[j]}
		}
		for k, v := range after {
			branch[k] = v
		}
		branches = append(branches, branch)
	}
	switch len(branches) {
	case 0:
		// nothing sorts after the cursor
		return bson.M{"_id": bson.M{"$exists": false}}
	case 1:
		return branches[0]
	}
	return bson.M{"$or": branches}
}

// afterValue is the condition "field sorts strictly after v" for one ordering, or
// false when no value can
func afterValue(o repository.Order, v interface{}) (bson.M, bool) {
	field := mongoField(o.Field)
	if o.Direction == repository.Desc {
		if v == nil {
			return nil, false
		}
		if field == "_id" {
			return bson.M{field: bson.M{"$lt": v}}, true
		}
		return bson.M{"$or": []bson.M{
			{field: bson.M{"$lt": v}},
			{field: nil},
		}}, true
	}
	if v == nil {
		return bson.M{field: bson.M{"$ne": nil}}, true
	}
	return bson.M{field: bson.M{"$gt": v}}, true
}

// buildUpdate splits fields into $set and $unset; a nil value removes the field
func buildUpdate(fields map[string]interface{}) bson.M {
	set, unset := bson.M{}, bson.M{}
	for k, v := range fields {
		if k == repository.IDField || k == "_id" {
			continue
		}
		if v == nil {
			unset[k] = ""
			continue
		}
		set[k] = v
	}
	update := bson.M{}
	if len(set) > 0 {
		update["$set"] = set
	}
	if len(unset) > 0 {
		update["$unset"] = unset
	}
	return update
}
