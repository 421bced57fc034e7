package search

import (
	"regexp"
	"strings"
	"time"

	"threatshare/core"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Op is a predicate clause operator
type Op string

const (
	OpEq   Op = "eq"
	OpIn   Op = "in"
	OpGte  Op = "gte"
	OpLte  Op = "lte"
	OpText Op = "text"
)

// TextFields are the document fields matched by free-text queries
var TextFields = []string{"value", "description", "tags"}

// Clause is one condition of a predicate. Value holds a string for
// eq/text, []string for in, and an int or time.Time for range operators.
type Clause struct {
	Field string
	Op    Op
	Value interface{}
}

// Predicate is a conjunction of clauses. An empty predicate matches everything.
type Predicate struct {
	Clauses []Clause
}

// BuildQuery turns a normalized filter into a predicate containing only
// the clauses for fields present in the filter.
func BuildQuery(f Filter) Predicate {
	var p Predicate
	add := func(field string, op Op, value interface{}) {
		p.Clauses = append(p.Clauses, Clause{Field: field, Op: op, Value: value})
	}

	if f.Query != "" {
		add("", OpText, f.Query)
	}
	if f.Type != "" {
		add("type", OpEq, string(f.Type))
	}
	if f.ThreatLevel != "" {
		add("threatLevel", OpEq, string(f.ThreatLevel))
	}
	if len(f.Tags) > 0 {
		add("tags", OpIn, append([]string(nil), f.Tags...))
	}
	if f.ConfidenceMin != nil {
		add("confidence", OpGte, *f.ConfidenceMin)
	}
	if f.ConfidenceMax != nil {
		add("confidence", OpLte, *f.ConfidenceMax)
	}
	if f.DateFrom != nil {
		add("createdAt", OpGte, *f.DateFrom)
	}
	if f.DateTo != nil {
		add("createdAt", OpLte, *f.DateTo)
	}
	return p
}

// TextPredicate matches records whose value, description or tags contain q
func TextPredicate(q string) Predicate {
	return Predicate{Clauses: []Clause{{Op: OpText, Value: q}}}
}

// And returns a predicate holding the clauses of p followed by those of other
func (p Predicate) And(other Predicate) Predicate {
	clauses := make([]Clause, 0, len(p.Clauses)+len(other.Clauses))
	clauses = append(clauses, p.Clauses...)
	clauses = append(clauses, other.Clauses...)
	return Predicate{Clauses: clauses}
}

// IsEmpty reports whether the predicate has no clauses
func (p Predicate) IsEmpty() bool {
	return len(p.Clauses) == 0
}

// BSON renders the predicate as a MongoDB filter document. Clauses on the
// same field are merged into one operator document, in first-seen order.
func (p Predicate) BSON() bson.D {
	doc := bson.D{}
	fieldIdx := map[string]int{}
	var texts bson.A

	for _, c := range p.Clauses {
		if c.Op == OpText {
			texts = append(texts, bson.D{{Key: "$or", Value: textBSON(c.Value.(string))}})
			continue
		}

		var op bson.E
		switch c.Op {
		case OpEq:
			op = bson.E{Key: "$eq", Value: c.Value}
		case OpIn:
			op = bson.E{Key: "$in", Value: c.Value}
		case OpGte:
			op = bson.E{Key: "$gte", Value: c.Value}
		case OpLte:
			op = bson.E{Key: "$lte", Value: c.Value}
		default:
			continue
		}

		if i, ok := fieldIdx[c.Field]; ok {
			doc[i].Value = append(doc[i].Value.(bson.D), op)
			continue
		}
		fieldIdx[c.Field] = len(doc)
		doc = append(doc, bson.E{Key: c.Field, Value: bson.D{op}})
	}

	switch len(texts) {
	case 0:
	case 1:
		doc = append(bson.D{texts[0].(bson.D)[0]}, doc...)
	default:
		doc = append(bson.D{{Key: "$and", Value: texts}}, doc...)
	}
	return doc
}

func textBSON(q string) bson.A {
	pattern := primitive.Regex{Pattern: regexp.QuoteMeta(q), Options: "i"}
	alts := make(bson.A, 0, len(TextFields))
	for _, field := range TextFields {
		alts = append(alts, bson.D{{Key: field, Value: bson.D{{Key: "$regex", Value: pattern}}}})
	}
	return alts
}

// Matches evaluates the predicate against a record in memory
func (p Predicate) Matches(ioc *core.IOC) bool {
	for _, c := range p.Clauses {
		if !c.matches(ioc) {
			return false
		}
	}
	return true
}

func (c Clause) matches(ioc *core.IOC) bool {
	switch c.Op {
	case OpText:
		return textMatches(ioc, c.Value.(string))
	case OpEq:
		v, ok := fieldValue(ioc, c.Field)
		return ok && v == c.Value
	case OpIn:
		wanted, _ := c.Value.([]string)
		return anyTagIn(fieldStrings(ioc, c.Field), wanted)
	case OpGte, OpLte:
		v, ok := fieldValue(ioc, c.Field)
		if !ok {
			return false
		}
		cmp, ok := compareValues(v, c.Value)
		if !ok {
			return false
		}
		if c.Op == OpGte {
			return cmp >= 0
		}
		return cmp <= 0
	default:
		return false
	}
}

func textMatches(ioc *core.IOC, q string) bool {
	needle := strings.ToLower(q)
	if strings.Contains(strings.ToLower(ioc.Value), needle) ||
		strings.Contains(strings.ToLower(ioc.Description), needle) {
		return true
	}
	for _, tag := range ioc.Tags {
		if strings.Contains(strings.ToLower(tag), needle) {
			return true
		}
	}
	return false
}

func anyTagIn(have, wanted []string) bool {
	for _, h := range have {
		for _, w := range wanted {
			if h == w {
				return true
			}
		}
	}
	return false
}

// fieldValue returns the scalar value stored under a document field name
func fieldValue(ioc *core.IOC, field string) (interface{}, bool) {
	switch field {
	case "_id", "id":
		return ioc.ID, true
	case "type":
		return string(ioc.Type), true
	case "value":
		return ioc.Value, true
	case "threatLevel":
		return string(ioc.ThreatLevel), true
	case "threatLevelOrder":
		return ioc.ThreatLevelOrder, true
	case "confidence":
		return ioc.Confidence, true
	case "verificationCount":
		return ioc.VerificationCount, true
	case "status":
		return string(ioc.Status), true
	case "submitter":
		return ioc.Submitter, true
	case "createdAt":
		return ioc.CreatedAt, true
	case "updatedAt":
		return ioc.UpdatedAt, true
	default:
		return nil, false
	}
}

func fieldStrings(ioc *core.IOC, field string) []string {
	if field == "tags" {
		return ioc.Tags
	}
	if v, ok := fieldValue(ioc, field); ok {
		if s, ok := v.(string); ok {
			return []string{s}
		}
	}
	return nil
}

// compareValues orders two values of the same kind: ints, strings or times
func compareValues(a, b interface{}) (int, bool) {
	switch av := a.(type) {
	case int:
		bv, ok := b.(int)
		if !ok {
			return 0, false
		}
		switch {
		case av < bv:
			return -1, true
		case av > bv:
			return 1, true
		}
		return 0, true
	case string:
		bv, ok := b.(string)
		if !ok {
			return 0, false
		}
		return strings.Compare(av, bv), true
	case time.Time:
		bv, ok := b.(time.Time)
		if !ok {
			return 0, false
		}
		return av.Compare(bv), true
	default:
		return 0, false
	}
}
