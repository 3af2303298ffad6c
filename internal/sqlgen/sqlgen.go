package sqlgen

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/pfrederiksen/o365-builds/internal/build"
)

const (
	DefaultColumn    = "v_GS_OFFICE365PROPLUSCONFIGURATIONS.VersionToReport0"
	DefaultAlias     = "Office365Build"
	DefaultTableName = "O365BuildToVersionMap"

	// UnknownBuild is the CASE fallback for versions missing from the map.
	UnknownBuild = "Unknown"

	columnWidth = 20
)

// disclaimer opens every table script. It must not contain statement keywords.
const disclaimer = `-- Generated by o365-builds from the Microsoft 365 Apps update history pages.
-- Review every statement below before running it against a reporting database.
-- The statements are wrapped in a block comment; remove the opening and closing
-- comment markers once the script has been checked.
`

// CaseOptions configures CaseExpression. Zero values select the defaults.
type CaseOptions struct {
	Column string
	Alias  string
	Escape bool
}

// TableOptions configures TableScript. Zero values select the defaults.
type TableOptions struct {
	TableName             string
	DontDropTable         bool
	DeleteExistingRecords bool
	Escape                bool
}

// Statement is a single parameterized SQL statement.
type Statement struct {
	SQL  string
	Args []any
}

// CaseExpression renders one WHEN clause per record, in input order:
//
//	case when <column> = '16.0.1.2' then '99'
//	when <column> = '16.0.3.4' then '100'
//	else 'Unknown' end as Office365Build
func CaseExpression(records []build.Record, opts CaseOptions) string {
	column := valueOr(opts.Column, DefaultColumn)
	alias := valueOr(opts.Alias, DefaultAlias)

	var sb strings.Builder
	sb.WriteString("case")
	for i, r := range records {
		if i > 0 {
			sb.WriteString("\n")
		} else {
			sb.WriteString(" ")
		}
		fmt.Fprintf(&sb, "when %s = %s then %s",
			column, quote(r.VersionNumber(), opts.Escape), quote(r.Build, opts.Escape))
	}
	fmt.Fprintf(&sb, "\nelse '%s' end as %s", UnknownBuild, alias)

	return sb.String()
}

// TableScript renders the drop, create, delete and insert statements for the lookup table,
// wrapped in a block comment behind a review disclaimer.
func TableScript(records []build.Record, opts TableOptions) string {
	table := valueOr(opts.TableName, DefaultTableName)

	var sb strings.Builder
	sb.WriteString(disclaimer)
	sb.WriteString("/*\n")

	if !opts.DontDropTable {
		fmt.Fprintf(&sb, "IF OBJECT_ID('%s', 'U') IS NOT NULL\n", table)
		fmt.Fprintf(&sb, "    DROP TABLE %s;\n", table)
	}

	fmt.Fprintf(&sb, "IF OBJECT_ID('%s', 'U') IS NULL\n", table)
	fmt.Fprintf(&sb, "    CREATE TABLE %s (\n", table)
	fmt.Fprintf(&sb, "        VersionNumber varchar(%d) NOT NULL,\n", columnWidth)
	fmt.Fprintf(&sb, "        BuildNumber varchar(%d) NOT NULL,\n", columnWidth)
	fmt.Fprintf(&sb, "        CONSTRAINT %s PRIMARY KEY (VersionNumber)\n", primaryKeyName(table))
	sb.WriteString("    );\n")

	if opts.DeleteExistingRecords {
		fmt.Fprintf(&sb, "DELETE FROM %s;\n", table)
	}

	for _, r := range records {
		fmt.Fprintf(&sb, "INSERT INTO %s (VersionNumber, BuildNumber) VALUES (%s,%s);\n",
			table, quote(r.VersionNumber(), opts.Escape), quote(r.Build, opts.Escape))
	}

	sb.WriteString("*/\n")
	return sb.String()
}

// InsertStatements returns one placeholder-based INSERT per record, in input order,
// for execution through database/sql.
func InsertStatements(records []build.Record, tableName string) []Statement {
	table := valueOr(tableName, DefaultTableName)
	query := fmt.Sprintf("INSERT INTO %s (VersionNumber, BuildNumber) VALUES (@p1, @p2)", table)

	stmts := make([]Statement, 0, len(records))
	for _, r := range records {
		stmts = append(stmts, Statement{
			SQL:  query,
			Args: []any{sql.Named("p1", r.VersionNumber()), sql.Named("p2", r.Build)},
		})
	}
	return stmts
}

// primaryKeyName derives the constraint name from the unqualified table name,
// so "dbo.[Build Map]" becomes "PK_BuildMap".
func primaryKeyName(table string) string {
	if i := strings.LastIndex(table, "."); i >= 0 {
		table = table[i+1:]
	}
	table = strings.Map(func(r rune) rune {
		switch r {
		case '[', ']', '"', ' ':
			return -1
		}
		return r
	}, table)
	return "PK_" + table
}

// quote wraps s in single quotes, doubling embedded quotes when escape is set.
func quote(s string, escape bool) string {
	if escape {
		s = strings.ReplaceAll(s, "'", "''")
	}
	return "'" + s + "'"
}

func valueOr(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}
