// Package query turns raw HTTP query parameters into MongoDB filters, sort and
// projection documents, and pagination metadata.
package query

import (
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ReservedKeys are consumed by the shaper and paginator and never become filter terms.
var ReservedKeys = map[string]struct{}{
	"page":    {},
	"sort":    {},
	"limit":   {},
	"fields":  {},
	"keyword": {},
}

var comparisonOperators = map[string]string{
	"gt":  "$gt",
	"gte": "$gte",
	"lt":  "$lt",
	"lte": "$lte",
	"ne":  "$ne",
	"in":  "$in",
	"nin": "$nin",
}

// FilterOptions tunes how plain values are matched for a resource.
type FilterOptions struct {
	// IDFields are matched exactly in addition to "_id" and fields ending in "Id".
	IDFields []string
	// ExactFields are enum-like string fields that must not be substring-matched.
	ExactFields []string
	// Ignored fields, and paths below them, never become filter terms.
	Ignored []string
}

// filterable rejects operator injection such as "$where" or "a.$ne" and
// ignored fields.
func (o FilterOptions) filterable(field string) bool {
	if strings.Contains(field, "$") {
		return false
	}
	for _, f := range o.Ignored {
		if field == f || strings.HasPrefix(field, f+".") {
			return false
		}
	}
	return true
}

func (o FilterOptions) isIDField(field string) bool {
	if field == "_id" || strings.HasSuffix(field, "Id") {
		return true
	}
	for _, f := range o.IDFields {
		if f == field {
			return true
		}
	}
	return false
}

func (o FilterOptions) isExactField(field string) bool {
	for _, f := range o.ExactFields {
		if f == field {
			return true
		}
	}
	return false
}

// BuildFilter translates query parameters into a MongoDB filter document.
//
// Bracketed keys such as price[gte]=5 become operator objects. Identifier-like
// fields match exactly (24-hex strings become ObjectIDs), "true"/"false" match
// booleans, and any other string is a case-insensitive substring match.
// Operators outside the comparison set, field names containing "$" and
// ignored fields are dropped.
func BuildFilter(params url.Values, opts FilterOptions) bson.M {
	filter := bson.M{}
	for key, values := range params {
		if len(values) == 0 {
			continue
		}
		if _, reserved := ReservedKeys[key]; reserved {
			continue
		}

		field, op, hasOp := splitOperator(key)
		if field == "" {
			continue
		}
		field = fieldName(field)
		if !opts.filterable(field) {
			continue
		}

		if hasOp {
			mongoOp, ok := comparisonOperators[op]
			if !ok {
				continue
			}
			ops, ok := filter[field].(bson.M)
			if !ok {
				ops = bson.M{}
				filter[field] = ops
			}
			ops[mongoOp] = operatorValue(field, op, values[len(values)-1], opts)
			continue
		}

		if _, taken := filter[field].(bson.M); taken {
			// an operator object for the same field already exists
			continue
		}
		filter[field] = matchValue(field, values, opts)
	}
	return filter
}

// splitOperator splits "price[gte]" into ("price", "gte", true).
func splitOperator(key string) (field, op string, ok bool) {
	open := strings.IndexByte(key, '[')
	if open < 0 || !strings.HasSuffix(key, "]") {
		return key, "", false
	}
	return key[:open], key[open+1 : len(key)-1], true
}

func fieldName(field string) string {
	if field == "id" {
		return "_id"
	}
	return field
}

func matchValue(field string, values []string, opts FilterOptions) interface{} {
	if len(values) > 1 {
		in := make(bson.A, 0, len(values))
		for _, v := range values {
			in = append(in, exactValue(field, v, opts))
		}
		return bson.M{"$in": in}
	}

	v := values[0]
	switch {
	case opts.isIDField(field):
		return idValue(v)
	case v == "true" || v == "false":
		return v == "true"
	case opts.isExactField(field):
		return v
	default:
		return primitive.Regex{Pattern: regexp.QuoteMeta(v), Options: "i"}
	}
}

func exactValue(field, v string, opts FilterOptions) interface{} {
	if opts.isIDField(field) {
		return idValue(v)
	}
	if v == "true" || v == "false" {
		return v == "true"
	}
	return v
}

func operatorValue(field, op, raw string, opts FilterOptions) interface{} {
	if op == "in" || op == "nin" {
		parts := strings.Split(raw, ",")
		out := make(bson.A, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p == "" {
				continue
			}
			out = append(out, scalarValue(field, p, opts))
		}
		return out
	}
	return scalarValue(field, raw, opts)
}

// scalarValue coerces an operator operand: ids, numbers, booleans and dates.
func scalarValue(field, v string, opts FilterOptions) interface{} {
	if opts.isIDField(field) {
		return idValue(v)
	}
	if i, err := strconv.ParseInt(v, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		return f
	}
	if v == "true" || v == "false" {
		return v == "true"
	}
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t
	}
	if t, err := time.Parse("2006-01-02", v); err == nil {
		return t
	}
	return v
}

func idValue(v string) interface{} {
	if oid, err := primitive.ObjectIDFromHex(v); err == nil {
		return oid
	}
	return v
}

// And combines non-empty filters. A single filter is returned as is.
func And(filters ...bson.M) bson.M {
	parts := make(bson.A, 0, len(filters))
	var last bson.M
	for _, f := range filters {
		if len(f) == 0 {
			continue
		}
		parts = append(parts, f)
		last = f
	}
	switch len(parts) {
	case 0:
		return bson.M{}
	case 1:
		return last
	default:
		return bson.M{"$and": parts}
	}
}

// CanonicalKey renders params with keys and repeated values sorted, so that
// equivalent query strings produce the same cache key.
func CanonicalKey(params url.Values) string {
	sorted := make(url.Values, len(params))
	for k, vs := range params {
		cp := append([]string(nil), vs...)
		sort.Strings(cp)
		sorted[k] = cp
	}
	return sorted.Encode()
}
