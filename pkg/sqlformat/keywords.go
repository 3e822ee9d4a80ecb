package sqlformat

// keywords are uppercased on output.
var keywords = toSet(
	"ADD", "ALL", "ALTER", "ANALYZE", "AND", "ANY", "AS", "ASC", "BEGIN",
	"BETWEEN", "BY", "CASCADE", "CASE", "CAST", "CHECK", "COLUMN", "COMMIT",
	"CONFLICT", "CONSTRAINT", "CREATE", "CROSS", "CURRENT", "DATABASE",
	"DEFAULT", "DELETE", "DESC", "DISTINCT", "DO", "DROP", "ELSE", "END",
	"ESCAPE", "EXCEPT", "EXISTS", "EXPLAIN", "EXTRACT", "FALSE", "FETCH",
	"FIRST", "FOLLOWING", "FOR", "FOREIGN", "FROM", "FULL", "GRANT", "GROUP",
	"HAVING", "IF", "ILIKE", "IN", "INDEX", "INNER", "INSERT", "INTERSECT",
	"INTERVAL", "INTO", "IS", "JOIN", "KEY", "LAST", "LATERAL", "LEFT", "LIKE",
	"LIMIT", "MATERIALIZED", "MERGE", "NATURAL", "NEXT", "NOT", "NOTHING",
	"NULL", "NULLS", "OF", "OFFSET", "ON", "ONLY", "OR", "ORDER", "OUTER",
	"OVER", "PARTITION", "PRECEDING", "PRIMARY", "RANGE", "RECURSIVE",
	"REFERENCES", "REPLACE", "RETURNING", "REVOKE", "RIGHT", "ROLLBACK", "ROW",
	"ROWS", "SCHEMA", "SELECT", "SET", "SOME", "TABLE", "TEMP", "TEMPORARY",
	"THEN", "TIES", "TO", "TRANSACTION", "TRUE", "TRUNCATE", "UNBOUNDED",
	"UNION", "UNIQUE", "UPDATE", "USING", "VALUES", "VIEW", "WHEN", "WHERE",
	"WINDOW", "WITH",
)

// clauses start a new line when they appear at statement or sub-query level.
var clauses = toSet(
	"SELECT", "FROM", "WHERE", "GROUP", "ORDER", "HAVING", "LIMIT", "OFFSET",
	"FETCH", "UNION", "INTERSECT", "EXCEPT", "VALUES", "SET", "RETURNING",
	"WINDOW", "UPDATE",
)

// joinWords may open a join phrase such as LEFT OUTER JOIN.
var joinWords = toSet("JOIN", "LEFT", "RIGHT", "INNER", "FULL", "CROSS", "NATURAL", "OUTER")

// callable keywords take their argument list without a separating space.
var callable = toSet("CAST", "EXTRACT", "LEFT", "RIGHT", "REPLACE", "ANY", "SOME")

// conditions are the clauses whose AND/OR operands go on their own lines.
var conditions = toSet("WHERE", "HAVING", "ON")

func toSet(words ...string) map[string]bool {
	m := make(map[string]bool, len(words))
	for _, w := range words {
		m[w] = true
	}
	return m
}
