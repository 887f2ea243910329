package mongodb

import (
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/deptsite/deptcms/internal/core/filter"
	"github.com/deptsite/deptcms/internal/core/schema"
)

// key maps a field to its document key. Declared and system fields share
// the top level of a document; only id is renamed.
func key(field string) string {
	if field == schema.FieldID {
		return "_id"
	}
	return field
}

func known(def *schema.ResourceDefinition, field string) bool {
	_, ok := def.FieldType(field)
	return ok
}

// BuildFilter translates req into a query document. Conditions are joined
// under $and so repeated fields never collide.
func BuildFilter(def *schema.ResourceDefinition, req *filter.Request) bson.D {
	var conds bson.A

	for _, f := range req.Exact {
		if !known(def, f.Field) {
			continue
		}
		conds = append(conds, bson.D{{Key: key(f.Field), Value: f.Value}})
	}

	for _, g := range req.Search {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(g.Text), Options: "i"}
		var ors bson.A
		for _, name := range g.Fields {
			f, ok := def.Field(name)
			if !ok || (f.Type != schema.TypeString && f.Type != schema.TypeStringArray) {
				continue
			}
			// a regex on an array field matches any element
			ors = append(ors, bson.D{{Key: name, Value: pattern}})
		}
		if len(ors) == 0 {
			continue
		}
		conds = append(conds, bson.D{{Key: "$or", Value: ors}})
	}

	for _, r := range req.Ranges {
		if t, ok := def.FieldType(r.Field); !ok || t != schema.TypeDate {
			continue
		}
		bounds := bson.D{}
		if r.From != nil {
			bounds = append(bounds, bson.E{Key: "$gte", Value: r.From.UTC()})
		}
		if r.To != nil {
			bounds = append(bounds, bson.E{Key: "$lte", Value: r.To.UTC()})
		}
		if len(bounds) == 0 {
			continue
		}
		conds = append(conds, bson.D{{Key: key(r.Field), Value: bounds}})
	}

	if len(conds) == 0 {
		return bson.D{}
	}
	return bson.D{{Key: "$and", Value: conds}}
}

// BuildSort orders by the requested keys, then by creation order.
func BuildSort(def *schema.ResourceDefinition, keys []schema.SortKey) bson.D {
	sort := bson.D{}
	seen := map[string]bool{}
	for _, k := range keys {
		t, ok := def.FieldType(k.Field)
		if !ok || t == schema.TypeObject || t == schema.TypeStringArray || seen[k.Field] {
			continue
		}
		seen[k.Field] = true
		dir := 1
		if k.Desc {
			dir = -1
		}
		sort = append(sort, bson.E{Key: key(k.Field), Value: dir})
	}
	if !seen[schema.FieldCreatedAt] {
		sort = append(sort, bson.E{Key: schema.FieldCreatedAt, Value: 1})
	}
	return append(sort, bson.E{Key: "_id", Value: 1})
}
