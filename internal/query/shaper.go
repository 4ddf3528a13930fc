package query

import (
	"regexp"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DefaultSort is applied when no sort parameter is supplied.
const DefaultSort = "-createdAt"

// Sort parses "a,-b" into an ordered sort document. "_id" is appended as a
// tiebreaker so that paging over equal keys stays stable.
func Sort(raw string) bson.D {
	if strings.TrimSpace(raw) == "" {
		raw = DefaultSort
	}

	var (
		out     bson.D
		lastDir = -1
		hasID   bool
	)
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		dir := 1
		switch {
		case strings.HasPrefix(part, "-"):
			dir = -1
			part = part[1:]
		case strings.HasPrefix(part, "+"):
			part = part[1:]
		}
		if part == "" {
			continue
		}
		name := fieldName(part)
		if name == "_id" {
			hasID = true
		}
		out = append(out, bson.E{Key: name, Value: dir})
		lastDir = dir
	}
	if len(out) == 0 {
		return bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}
	}
	if !hasID {
		out = append(out, bson.E{Key: "_id", Value: lastDir})
	}
	return out
}

// Projection parses a "fields" parameter. Plain names build an inclusion
// projection, "-name" entries build an exclusion. Sensitive fields never
// appear in the result. A nil projection returns whole documents.
func Projection(raw string, sensitive ...string) bson.M {
	include, exclude := bson.M{}, bson.M{}
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if strings.HasPrefix(part, "-") {
			if name := part[1:]; name != "" {
				exclude[fieldName(name)] = 0
			}
			continue
		}
		include[fieldName(part)] = 1
	}

	for _, s := range sensitive {
		delete(include, s)
	}
	if len(include) > 0 {
		if _, ok := exclude["_id"]; ok {
			include["_id"] = 0
		}
		return include
	}

	for _, s := range sensitive {
		exclude[s] = 0
	}
	if len(exclude) == 0 {
		return nil
	}
	return exclude
}

// KeywordFilter matches keyword case-insensitively against any of fields.
// It returns nil when there is nothing to search.
func KeywordFilter(keyword string, fields []string) bson.M {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" || len(fields) == 0 {
		return nil
	}
	pattern := regexp.QuoteMeta(keyword)
	or := make(bson.A, 0, len(fields))
	for _, f := range fields {
		or = append(or, bson.M{f: primitive.Regex{Pattern: pattern, Options: "i"}})
	}
	return bson.M{"$or": or}
}
