//-------------------------------------------------------------------------
//
// pgEdge Retail Warehouse
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package warehouse

import (
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/pgEdge/pgedge-retail-dw/internal/scd"
)

// ColumnDef is a physical column of a table created by the warehouse.
type ColumnDef struct {
	Name    string
	SQLType string
	NotNull bool
}

func ident(parts ...string) string {
	return pgx.Identifier(parts).Sanitize()
}

func tableIdent(shape *scd.Shape) string {
	return ident(shape.Schema, shape.Table)
}

func columnList(names []string) string {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = ident(n)
	}
	return strings.Join(quoted, ", ")
}

// dimensionColumns returns the physical layout of a dimension table.
func dimensionColumns(shape *scd.Shape) []ColumnDef {
	cols := []ColumnDef{
		{Name: shape.SurrogateKey, SQLType: "BIGINT", NotNull: true},
		{Name: shape.NaturalKey, SQLType: "BIGINT", NotNull: true},
	}
	for _, c := range shape.Columns {
		cols = append(cols, ColumnDef{Name: c.Name, SQLType: c.Kind.SQLType(), NotNull: true})
	}
	if shape.Versioned {
		cols = append(cols,
			ColumnDef{Name: scd.ColumnIsActive, SQLType: "BOOLEAN", NotNull: true},
			ColumnDef{Name: scd.ColumnValidFrom, SQLType: "TIMESTAMPTZ", NotNull: true},
			ColumnDef{Name: scd.ColumnValidTo, SQLType: "TIMESTAMPTZ"},
		)
	}
	return cols
}

func createSchemaSQL(schema string) string {
	return "CREATE SCHEMA IF NOT EXISTS " + ident(schema)
}

func dropTableSQL(schema, table string) string {
	return "DROP TABLE IF EXISTS " + ident(schema, table)
}

func createTableSQL(schema, table string, cols []ColumnDef, primaryKey string) string {
	lines := make([]string, len(cols))
	for i, c := range cols {
		line := "    " + ident(c.Name) + " " + c.SQLType
		if c.NotNull {
			line += " NOT NULL"
		}
		if c.Name == primaryKey {
			line += " PRIMARY KEY"
		}
		lines[i] = line
	}
	return fmt.Sprintf("CREATE TABLE %s (\n%s\n)", ident(schema, table), strings.Join(lines, ",\n"))
}

// createIndexesSQL enforces one active row per natural key and supports
// point-in-time lookups on versioned dimensions.
func createIndexesSQL(shape *scd.Shape) []string {
	if !shape.Versioned {
		return []string{fmt.Sprintf("CREATE UNIQUE INDEX %s ON %s (%s)",
			ident(shape.Table+"_nk_uq"), tableIdent(shape), ident(shape.NaturalKey))}
	}
	return []string{
		fmt.Sprintf("CREATE UNIQUE INDEX %s ON %s (%s) WHERE %s",
			ident(shape.Table+"_active_uq"), tableIdent(shape), ident(shape.NaturalKey), ident(scd.ColumnIsActive)),
		fmt.Sprintf("CREATE INDEX %s ON %s (%s, %s)",
			ident(shape.Table+"_validity_idx"), tableIdent(shape), ident(shape.NaturalKey), ident(scd.ColumnValidFrom)),
	}
}

func lockTableSQL(shape *scd.Shape) string {
	return fmt.Sprintf("LOCK TABLE %s IN SHARE ROW EXCLUSIVE MODE", tableIdent(shape))
}

func keyStatsSQL(shape *scd.Shape) string {
	sk := ident(shape.SurrogateKey)
	return fmt.Sprintf("SELECT COALESCE(MAX(%s) FILTER (WHERE %s > 0), 0), COUNT(*) FROM %s",
		sk, sk, tableIdent(shape))
}

func selectVersionsSQL(shape *scd.Shape, activeOnly bool) string {
	q := fmt.Sprintf("SELECT %s FROM %s", columnList(shape.ColumnNames()), tableIdent(shape))
	if activeOnly {
		q += fmt.Sprintf(" WHERE %s > 0", ident(shape.SurrogateKey))
		if shape.Versioned {
			q += " AND " + ident(scd.ColumnIsActive)
		}
	}
	return q + " ORDER BY " + ident(shape.SurrogateKey)
}

func expireSQL(shape *scd.Shape) string {
	return fmt.Sprintf("UPDATE %s SET %s = false, %s = $1 WHERE %s = $2 AND %s",
		tableIdent(shape), ident(scd.ColumnIsActive), ident(scd.ColumnValidTo),
		ident(shape.SurrogateKey), ident(scd.ColumnIsActive))
}

func updateSQL(shape *scd.Shape, columns []string) string {
	sets := make([]string, len(columns))
	for i, c := range columns {
		sets[i] = fmt.Sprintf("%s = $%d", ident(c), i+1)
	}
	where := fmt.Sprintf("%s = $%d", ident(shape.SurrogateKey), len(columns)+1)
	if shape.Versioned {
		where += " AND " + ident(scd.ColumnIsActive)
	}
	return fmt.Sprintf("UPDATE %s SET %s WHERE %s", tableIdent(shape), strings.Join(sets, ", "), where)
}

func statsSQL(shape *scd.Shape) string {
	sk := ident(shape.SurrogateKey)
	active := "COUNT(*) FILTER (WHERE " + sk + " > 0)"
	if shape.Versioned {
		active = "COUNT(*) FILTER (WHERE " + sk + " > 0 AND " + ident(scd.ColumnIsActive) + ")"
	}
	return fmt.Sprintf("SELECT COUNT(*), %s, COALESCE(MAX(%s) FILTER (WHERE %s > 0), 0) FROM %s",
		active, sk, sk, tableIdent(shape))
}
