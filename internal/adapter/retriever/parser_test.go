package retriever

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"findex/internal/adapter/analyzer"
)

func parseOps(t *testing.T, line string) []Op {
	t.Helper()
	p := NewParser(analyzer.NewPorterStemmer())
	return p.Parse(line)
}

func TestParser_Postfix(t *testing.T) {
	term := func(s string) Op { return Op{Kind: OpTerm, Term: s} }
	and := Op{Kind: OpAnd}
	or := Op{Kind: OpOr}
	not := Op{Kind: OpNot}

	tests := []struct {
		name string
		in   string
		want []Op
	}{
		{"single term", "cat", []Op{term("cat")}},
		{"explicit and", "cat && dog", []Op{term("cat"), term("dog"), and}},
		{"single amp", "cat & dog", []Op{term("cat"), term("dog"), and}},
		{"implicit and", "cat dog", []Op{term("cat"), term("dog"), and}},
		{"or", "cat || dog", []Op{term("cat"), term("dog"), or}},
		{"single pipe", "cat | dog", []Op{term("cat"), term("dog"), or}},
		{
			"not binds tighter than implicit and",
			"!cat dog",
			[]Op{term("cat"), not, term("dog"), and},
		},
		{
			"and binds tighter than or",
			"cat || dog && fish",
			[]Op{term("cat"), term("dog"), term("fish"), and, or},
		},
		{
			"parens override",
			"(cat || dog) fish",
			[]Op{term("cat"), term("dog"), or, term("fish"), and},
		},
		{"double not", "!!cat", []Op{term("cat"), not, not}},
		{
			"terms are stemmed",
			"running dogs",
			[]Op{term("run"), term("dog"), and},
		},
		{"uppercase folded", "CAT", []Op{term("cat")}},
		{
			"garbage skipped",
			"cat @#% dog",
			[]Op{term("cat"), term("dog"), and},
		},
		{"stray rparen dropped", "cat )", []Op{term("cat")}},
		{"unclosed lparen dropped", "( cat", []Op{term("cat")}},
		{"empty line", "", nil},
		{"operators only", "&& || !", []Op{and, not, or}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseOps(t, tt.in)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Parse(%q) (-want +got):\n%s", tt.in, diff)
			}
		})
	}
}

func TestParser_ImplicitAndEquivalence(t *testing.T) {
	pairs := [][2]string{
		{"cat dog", "cat && dog"},
		{"!cat dog", "(!cat) && dog"},
		{"(cat || dog) fish", "(cat || dog) && fish"},
		{"cat (dog)", "cat && (dog)"},
		{"cat !dog", "cat && !dog"},
	}
	for _, pair := range pairs {
		a := parseOps(t, pair[0])
		b := parseOps(t, pair[1])
		if diff := cmp.Diff(b, a); diff != "" {
			t.Errorf("%q vs %q (-explicit +implicit):\n%s", pair[0], pair[1], diff)
		}
	}
}

func TestParser_LongTermTruncated(t *testing.T) {
	long := make([]byte, 300)
	for i := range long {
		long[i] = 'z'
	}
	ops := parseOps(t, string(long))
	if len(ops) != 1 || ops[0].Kind != OpTerm {
		t.Fatalf("ops = %+v", ops)
	}
	if len(ops[0].Term) > analyzer.MaxTokenLen {
		t.Errorf("term length %d exceeds cap", len(ops[0].Term))
	}
}
