package sqlstore

import (
	"fmt"
	"strings"
)

// Driver names accepted by Open.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
)

// dialect holds the SQL that differs between engines. Column introspection
// returns (name, type, nullable, pk) with nullable and pk as 0/1 integers.
type dialect struct {
	name          string
	tablesSQL     string
	columnsSQL    string
	foreignKeySQL string
	idType        string
	quoteChar     string
	numbered      bool
}

var dialects = map[string]dialect{
	DriverSQLite: {
		name: DriverSQLite,
		tablesSQL: `SELECT name FROM sqlite_master
 WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name`,
		columnsSQL: `SELECT name, type, CASE WHEN "notnull" = 0 THEN 1 ELSE 0 END, CASE WHEN pk > 0 THEN 1 ELSE 0 END
 FROM pragma_table_info(?) ORDER BY cid`,
		foreignKeySQL: `SELECT "from", "table" FROM pragma_foreign_key_list(?)`,
		idType:        "TEXT",
		quoteChar:     `"`,
	},
	DriverPostgres: {
		name: DriverPostgres,
		tablesSQL: `SELECT table_name FROM information_schema.tables
 WHERE table_schema = current_schema() AND table_type = 'BASE TABLE' ORDER BY table_name`,
		columnsSQL: `SELECT c.column_name, c.data_type,
 CASE WHEN c.is_nullable = 'YES' THEN 1 ELSE 0 END,
 CASE WHEN EXISTS (
  SELECT 1 FROM information_schema.table_constraints tc
  JOIN information_schema.key_column_usage k
   ON tc.constraint_name = k.constraint_name AND tc.table_schema = k.table_schema
  WHERE tc.constraint_type = 'PRIMARY KEY' AND tc.table_schema = c.table_schema
   AND tc.table_name = c.table_name AND k.column_name = c.column_name
 ) THEN 1 ELSE 0 END
 FROM information_schema.columns c
 WHERE c.table_schema = current_schema() AND c.table_name = $1
 ORDER BY c.ordinal_position`,
		foreignKeySQL: `SELECT kcu.column_name, ccu.table_name
 FROM information_schema.table_constraints tc
 JOIN information_schema.key_column_usage kcu
  ON tc.constraint_name = kcu.constraint_name AND tc.table_schema = kcu.table_schema
 JOIN information_schema.constraint_column_usage ccu
  ON ccu.constraint_name = tc.constraint_name AND ccu.table_schema = tc.table_schema
 WHERE tc.constraint_type = 'FOREIGN KEY' AND tc.table_schema = current_schema() AND tc.table_name = $1`,
		idType:    "TEXT",
		quoteChar: `"`,
		numbered:  true,
	},
	DriverMySQL: {
		name: DriverMySQL,
		tablesSQL: `SELECT table_name FROM information_schema.tables
 WHERE table_schema = DATABASE() AND table_type = 'BASE TABLE' ORDER BY table_name`,
		columnsSQL: `SELECT column_name, data_type,
 CASE WHEN is_nullable = 'YES' THEN 1 ELSE 0 END,
 CASE WHEN column_key = 'PRI' THEN 1 ELSE 0 END
 FROM information_schema.columns
 WHERE table_schema = DATABASE() AND table_name = ? ORDER BY ordinal_position`,
		foreignKeySQL: `SELECT column_name, referenced_table_name FROM information_schema.key_column_usage
 WHERE table_schema = DATABASE() AND table_name = ? AND referenced_table_name IS NOT NULL`,
		idType:    "VARCHAR(64)",
		quoteChar: "`",
	},
}

func lookupDialect(driver string) (dialect, error) {
	d, ok := dialects[strings.ToLower(strings.TrimSpace(driver))]
	if !ok {
		return dialect{}, fmt.Errorf("unsupported SQL driver %q", driver)
	}
	return d, nil
}

func (d dialect) quote(ident string) string {
	return d.quoteChar + strings.ReplaceAll(ident, d.quoteChar, d.quoteChar+d.quoteChar) + d.quoteChar
}

// placeholder returns the n-th (1-based) bind parameter.
func (d dialect) placeholder(n int) string {
	if d.numbered {
		return fmt.Sprintf("$%d", n)
	}
	return "?"
}

func (d dialect) placeholders(start, count int) string {
	parts := make([]string, count)
	for i := range parts {
		parts[i] = d.placeholder(start + i)
	}
	return strings.Join(parts, ", ")
}

func (d dialect) createTableSQL(table string) string {
	return fmt.Sprintf("CREATE TABLE %s (%s %s PRIMARY KEY, %s DOUBLE PRECISION)",
		d.quote(table), d.quote("_id"), d.idType, d.quote("_creationTime"))
}
