// Package sqlgen renders build records as SQL text for reporting databases.
//
// CaseExpression produces a CASE fragment that maps a report column holding the product
// version to its build label. TableScript produces a commented-out script that creates and
// fills a two-column lookup table. Values are interpolated verbatim unless Escape is set;
// InsertStatements offers placeholder-based statements for callers that execute SQL.
package sqlgen
