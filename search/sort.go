package search

import (
	"threatshare/core"

	"go.mongodb.org/mongo-driver/bson"
)

// ThreatLevelOrderField is the precomputed numeric field sorted on in place of threatLevel
const ThreatLevelOrderField = "threatLevelOrder"

// SortField is one storage sort key; Direction is 1 for ascending, -1 for descending
type SortField struct {
	Field     string
	Direction int
}

// SortSpec is an ordered list of sort keys, most significant first
type SortSpec []SortField

var sortFields = map[string]string{
	SortByCreatedAt:         "createdAt",
	SortByUpdatedAt:         "updatedAt",
	SortByThreatLevel:       ThreatLevelOrderField,
	SortByConfidence:        "confidence",
	SortByVerificationCount: "verificationCount",
}

// ResolveSort maps a sort key and order onto storage sort fields.
// threatLevel sorts by severity ordinal, never by its string form.
// An unknown key falls back to newest first. The record id is appended
// as a tiebreaker so pages do not overlap.
func ResolveSort(sortBy, sortOrder string) SortSpec {
	field, ok := sortFields[sortBy]
	if !ok {
		return SortSpec{{Field: "createdAt", Direction: -1}, {Field: "_id", Direction: 1}}
	}
	dir := -1
	if sortOrder == SortAsc {
		dir = 1
	}
	return SortSpec{{Field: field, Direction: dir}, {Field: "_id", Direction: 1}}
}

// BSON renders the sort as a MongoDB sort document
func (s SortSpec) BSON() bson.D {
	doc := make(bson.D, 0, len(s))
	for _, f := range s {
		doc = append(doc, bson.E{Key: f.Field, Value: f.Direction})
	}
	return doc
}

// Less reports whether a sorts before b under this ordering
func (s SortSpec) Less(a, b *core.IOC) bool {
	for _, f := range s {
		av, aok := fieldValue(a, f.Field)
		bv, bok := fieldValue(b, f.Field)
		if !aok || !bok {
			continue
		}
		cmp, ok := compareValues(av, bv)
		if !ok || cmp == 0 {
			continue
		}
		if f.Direction < 0 {
			return cmp > 0
		}
		return cmp < 0
	}
	return false
}
