package report

import (
	"fmt"
	"regexp"
	"sort"

	"go-wms/internal/features/datasource"
	"go-wms/internal/features/template"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Unrecognized filter keys become column names in the compiled SQL, so
// they are constrained to plain identifiers.
var filterKeyRe = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// PredicateOp is the comparison kind of a query predicate
type PredicateOp string

const (
	OpEquals  PredicateOp = "eq"
	OpIn      PredicateOp = "in"
	OpBetween PredicateOp = "between"
)

// Predicate is one typed WHERE condition of a query plan
type Predicate struct {
	Source string      `json:"source"`
	Column string      `json:"column"`
	Op     PredicateOp `json:"op"`
	Value  any         `json:"value,omitempty"`
	Values []any       `json:"values,omitempty"`
	Low    any         `json:"low,omitempty"`
	High   any         `json:"high,omitempty"`
}

// Join is a left join from the primary source to a secondary one
type Join struct {
	Source   string `json:"source"`
	Table    string `json:"table"`
	LeftKey  string `json:"left_key"`
	RightKey string `json:"right_key"`
}

// ProjectedField is one output column resolved to its owning source
type ProjectedField struct {
	Field  string `json:"field"`
	Source string `json:"source"`
}

// QueryPlan is the driver-free description of a report query: primary
// source, left joins, typed predicates and the ordered projection. It
// carries no ordering, limiting or aggregation; execution returns the
// full filtered, projected row set.
type QueryPlan struct {
	Primary      string           `json:"primary"`
	PrimaryTable string           `json:"primary_table"`
	Joins        []Join           `json:"joins"`
	Predicates   []Predicate      `json:"predicates"`
	Projection   []ProjectedField `json:"projection"`
}

// BuildQuery assembles a query plan from a template's data sources, the
// runtime filter values and the configured fields.
//
// The first data source is the primary. Subsequent sources join only
// when the registry holds a mapping from the primary; unmapped sources
// are skipped without error (they may be informational-only).
func BuildQuery(reg *datasource.Registry, sources []string, filters map[string]any, fields []template.FieldSpec) (*QueryPlan, error) {
	if len(sources) == 0 {
		return nil, fmt.Errorf("no data sources configured")
	}
	primary, ok := reg.Get(sources[0])
	if !ok {
		return nil, fmt.Errorf("unknown data source %q", sources[0])
	}

	plan := &QueryPlan{
		Primary:      primary.Name,
		PrimaryTable: primary.Table,
	}

	joined := []string{primary.Name}
	for _, name := range sources[1:] {
		keys, ok := reg.JoinFor(primary.Name, name)
		if !ok {
			// No join mapping: skip silently rather than reject
			continue
		}
		sec, ok := reg.Get(name)
		if !ok {
			continue
		}
		plan.Joins = append(plan.Joins, Join{
			Source:   sec.Name,
			Table:    sec.Table,
			LeftKey:  keys.LeftKey,
			RightKey: keys.RightKey,
		})
		joined = append(joined, sec.Name)
	}

	// Stable predicate order regardless of map iteration
	keys := make([]string, 0, len(filters))
	for k := range filters {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		value := filters[key]
		if value == nil {
			continue
		}
		switch key {
		case "date_range":
			m, ok := asMap(value)
			if !ok {
				continue
			}
			plan.Predicates = append(plan.Predicates, Predicate{
				Source: plan.Primary,
				Column: "created_at",
				Op:     OpBetween,
				Low:    m["start_date"],
				High:   m["end_date"],
			})
		case "zone_type", "equipment_type":
			plan.Predicates = append(plan.Predicates, Predicate{
				Source: resolveSource(reg, joined, "type", plan.Primary),
				Column: "type",
				Op:     OpEquals,
				Value:  value,
			})
		case "status":
			plan.Predicates = append(plan.Predicates, Predicate{
				Source: resolveSource(reg, joined, "status", plan.Primary),
				Column: "status",
				Op:     OpEquals,
				Value:  value,
			})
		default:
			if !filterKeyRe.MatchString(key) {
				return nil, fmt.Errorf("invalid filter key %q", key)
			}
			if items, ok := asArray(value); ok {
				plan.Predicates = append(plan.Predicates, Predicate{
					Source: resolveSource(reg, joined, key, plan.Primary),
					Column: key,
					Op:     OpIn,
					Values: items,
				})
				continue
			}
			plan.Predicates = append(plan.Predicates, Predicate{
				Source: resolveSource(reg, joined, key, plan.Primary),
				Column: key,
				Op:     OpEquals,
				Value:  value,
			})
		}
	}

	for _, f := range fields {
		plan.Projection = append(plan.Projection, ProjectedField{
			Field:  f.Field,
			Source: resolveSource(reg, joined, f.Field, plan.Primary),
		})
	}

	return plan, nil
}

func resolveSource(reg *datasource.Registry, joined []string, field, primary string) string {
	if src, ok := reg.FieldSource(joined, field); ok {
		return src
	}
	return primary
}

// asMap and asArray normalize the document and array types the Mongo
// driver decodes stored filter values into.
func asMap(value any) (map[string]any, bool) {
	switch m := value.(type) {
	case map[string]any:
		return m, true
	case primitive.M:
		return m, true
	case primitive.D:
		out := make(map[string]any, len(m))
		for _, e := range m {
			out[e.Key] = e.Value
		}
		return out, true
	}
	return nil, false
}

func asArray(value any) ([]any, bool) {
	switch items := value.(type) {
	case []any:
		return items, true
	case primitive.A:
		return items, true
	}
	return nil, false
}
