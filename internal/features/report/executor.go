package report

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"go-wms/internal/database"

	"github.com/lib/pq"
)

// PlanExecutor runs a query plan and returns raw rows. The SQL
// implementation is the only place the engine touches a database
// driver; tests substitute an in-memory executor.
type PlanExecutor interface {
	Execute(ctx context.Context, plan *QueryPlan) ([]map[string]any, error)
}

type SQLPlanExecutor struct {
	db *sql.DB
}

func NewSQLPlanExecutor(wdb *database.WarehouseDB) PlanExecutor {
	return &SQLPlanExecutor{db: wdb.DB}
}

func (e *SQLPlanExecutor) Execute(ctx context.Context, plan *QueryPlan) ([]map[string]any, error) {
	query, args := CompileSQL(plan)

	rows, err := e.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to execute report query: %w", err)
	}
	defer rows.Close()

	return rowsToMaps(rows)
}

// CompileSQL translates a plan into a Postgres SELECT with positional
// placeholders. The primary source is aliased t0, joins t1..tn.
func CompileSQL(plan *QueryPlan) (string, []any) {
	aliases := map[string]string{plan.Primary: "t0"}
	for i, j := range plan.Joins {
		aliases[j.Source] = fmt.Sprintf("t%d", i+1)
	}
	alias := func(source string) string {
		if a, ok := aliases[source]; ok {
			return a
		}
		return "t0"
	}

	var sb strings.Builder
	sb.WriteString("SELECT ")
	if len(plan.Projection) == 0 {
		sb.WriteString("*")
	} else {
		for i, p := range plan.Projection {
			if i > 0 {
				sb.WriteString(", ")
			}
			fmt.Fprintf(&sb, "%s.%s AS %s", alias(p.Source), p.Field, p.Field)
		}
	}
	fmt.Fprintf(&sb, " FROM %s t0", plan.PrimaryTable)

	for i, j := range plan.Joins {
		fmt.Fprintf(&sb, " LEFT JOIN %s t%d ON t0.%s = t%d.%s",
			j.Table, i+1, j.LeftKey, i+1, j.RightKey)
	}

	var args []any
	next := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	var conds []string
	for _, p := range plan.Predicates {
		col := fmt.Sprintf("%s.%s", alias(p.Source), p.Column)
		switch p.Op {
		case OpEquals:
			conds = append(conds, fmt.Sprintf("%s = %s", col, next(p.Value)))
		case OpIn:
			conds = append(conds, fmt.Sprintf("%s = ANY(%s)", col, next(pq.Array(p.Values))))
		case OpBetween:
			low := next(p.Low)
			high := next(p.High)
			conds = append(conds, fmt.Sprintf("%s BETWEEN %s AND %s", col, low, high))
		}
	}
	if len(conds) > 0 {
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(conds, " AND "))
	}

	return sb.String(), args
}

func rowsToMaps(rows *sql.Rows) ([]map[string]any, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read columns: %w", err)
	}

	var out []map[string]any
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		row := make(map[string]any, len(columns))
		for i, col := range columns {
			v := values[i]
			if b, ok := v.([]byte); ok {
				v = string(b)
			}
			row[col] = v
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
