package sqlformat

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var corpus = []string{
	"",
	"   \n\t ",
	"select 1",
	"select a, b from t where x = 1 and y = 2",
	"SELECT * FROM (select id from t where id in (select id from u)) s order by id",
	"select count(*), left(name, 3) from t group by name having count(*) > 1",
	"insert into t (a, b) values (1, 'it''s'), (2, E'x\\'y')",
	"update t set a = a - 1, b = -2 where id = :id",
	"delete from t where created_at between '2020-01-01' and '2021-01-01' or flag is not null",
	"with recent as (select * from orders where ts > now() - interval '1 day') select * from recent",
	"select a -- trailing comment\nfrom t /* block\ncomment */ where b = $1",
	"select x::int, y::text from t left outer join u on t.id = u.id and u.x <> 0",
	"select $$dollar; quoted$$, \"Weird Col\", `tick` from t; select 2;",
	"select 'unterminated",
	"select /* unterminated",
	"select a from t where b like 'select%' escape '\\' and c = 1",
	"SELECT a.b.c, t.order, f(x)[1] FROM s.t AS t FOR UPDATE",
	"select - - 1, -x, +(1), 1e10, 0x1F, .5, a / -b",
	"select sum(case when a > 0 then 1 else -1 end) over (partition by b order by c) from t",
	"))) select ((( from",
	"select * from a natural join b cross join c full outer join d using (id)",
	"select 名前 from テーブル where 値 = 'ü'",
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "empty",
			in:   "",
			want: "",
		},
		{
			name: "whitespace only",
			in:   " \n\t ",
			want: "",
		},
		{
			name: "select list and where",
			in:   "select a, b from t where x = 1 and y = 2",
			want: "SELECT a,\n  b\nFROM t\nWHERE x = 1\n  AND y = 2",
		},
		{
			name: "between keeps its and",
			in:   "select * from t where a between 1 and 2 and b = 3",
			want: "SELECT *\nFROM t\nWHERE a BETWEEN 1 AND 2\n  AND b = 3",
		},
		{
			name: "join with conditions",
			in:   "select * from a left join b on a.id = b.id and a.x = 1",
			want: "SELECT *\nFROM a\nLEFT JOIN b ON a.id = b.id\n  AND a.x = 1",
		},
		{
			name: "subquery",
			in:   "select * from (select id from t) s",
			want: "SELECT *\nFROM (SELECT id\n  FROM t) s",
		},
		{
			name: "function calls",
			in:   "select count(*), left(name, 3) from t",
			want: "SELECT count(*),\n  LEFT(name, 3)\nFROM t",
		},
		{
			name: "grouping and ordering",
			in:   "select a, count(*) from t group by a order by 2 desc limit 5",
			want: "SELECT a,\n  count(*)\nFROM t\nGROUP BY a\nORDER BY 2 DESC\nLIMIT 5",
		},
		{
			name: "statements",
			in:   "select 1; select 2;",
			want: "SELECT 1;\n\nSELECT 2;",
		},
		{
			name: "line comment",
			in:   "select a -- c\nfrom t",
			want: "SELECT a -- c\nFROM t",
		},
		{
			name: "cast",
			in:   "select a::int from t",
			want: "SELECT a::int\nFROM t",
		},
		{
			name: "unary minus",
			in:   "select -1, a - 1",
			want: "SELECT -1,\n  a - 1",
		},
		{
			name: "insert",
			in:   "insert into t (a, b) values (1, 'x')",
			want: "INSERT INTO t(a, b)\nVALUES (1, 'x')",
		},
		{
			name: "update",
			in:   "update t set a = 1 where id = 2",
			want: "UPDATE t\nSET a = 1\nWHERE id = 2",
		},
		{
			name: "literals and quoted identifiers keep their text",
			in:   `select 'select from', "from" from t`,
			want: "SELECT 'select from',\n  \"from\"\nFROM t",
		},
		{
			name: "qualified keyword names stay as written",
			in:   "select t.order from t",
			want: "SELECT t.order\nFROM t",
		},
		{
			name: "unterminated string passes through",
			in:   "select 'abc",
			want: "SELECT 'abc",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	for _, in := range corpus {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), "input: %q", in)
	}
}

func TestNormalize_PreservesTokens(t *testing.T) {
	for _, in := range corpus {
		got := significant(Normalize(in))
		want := significant(in)
		require.Len(t, got, len(want), "input: %q", in)
		for i := range want {
			assert.True(t, strings.EqualFold(want[i], got[i]), "input %q: token %d %q != %q", in, i, want[i], got[i])
		}
	}
}

func TestTokenize_CoversInput(t *testing.T) {
	for _, in := range corpus {
		var b strings.Builder
		end := 0
		for _, tok := range Tokenize(in) {
			assert.Equal(t, end, tok.Start)
			assert.Equal(t, in[tok.Start:tok.End], tok.Text)
			b.WriteString(tok.Text)
			end = tok.End
		}
		assert.Equal(t, in, b.String())
	}
}

func TestTokenize_Kinds(t *testing.T) {
	toks := Tokenize("select 'a''b', \"c\", 1.5e3, $1, :name, ?, a::int, x <> y -- hi")

	var kinds []Kind
	for _, tok := range toks {
		if tok.Significant() {
			kinds = append(kinds, tok.Kind)
		}
	}
	assert.Equal(t, []Kind{
		Word, String, Punct, QuotedIdent, Punct, Number, Punct, Placeholder, Punct,
		Placeholder, Punct, Placeholder, Punct, Word, Operator, Word, Punct,
		Word, Operator, Word, LineComment,
	}, kinds)
}

func significant(s string) []string {
	var out []string
	for _, tok := range Tokenize(s) {
		if tok.Significant() {
			out = append(out, tok.Text)
		}
	}
	return out
}
