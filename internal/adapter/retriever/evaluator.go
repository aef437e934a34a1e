package retriever

import (
	"findex/internal/adapter/store"
)

// Evaluator executes postfix programs against an opened index. Every list
// on the stack is owned by the evaluator and sorted strictly increasing.
type Evaluator struct {
	idx *store.Reader
}

// NewEvaluator creates an evaluator over idx.
func NewEvaluator(idx *store.Reader) *Evaluator {
	return &Evaluator{idx: idx}
}

// Eval runs prog and returns the final hit list. A malformed program never
// panics: an operator short of operands treats the missing list as empty,
// and leftover stack entries are dropped.
func (e *Evaluator) Eval(prog []Op) []uint32 {
	var stack [][]uint32

	pop := func() []uint32 {
		if len(stack) == 0 {
			return nil
		}
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		return top
	}

	for _, op := range prog {
		switch op.Kind {
		case OpTerm:
			if i, ok := e.idx.FindTerm([]byte(op.Term)); ok {
				stack = append(stack, e.idx.Postings(i))
			} else {
				stack = append(stack, nil)
			}
		case OpNot:
			a := pop()
			stack = append(stack, complement(e.idx.DocCount(), a))
		case OpAnd:
			b := pop()
			a := pop()
			if len(a) == 0 || len(b) == 0 {
				stack = append(stack, nil)
			} else {
				stack = append(stack, intersect(a, b))
			}
		case OpOr:
			b := pop()
			a := pop()
			switch {
			case len(a) == 0:
				stack = append(stack, b)
			case len(b) == 0:
				stack = append(stack, a)
			default:
				stack = append(stack, union(a, b))
			}
		}
	}

	return pop()
}

// intersect computes the two-pointer intersection of sorted lists.
func intersect(a, b []uint32) []uint32 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	out := make([]uint32, 0, n)
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch x, y := a[i], b[j]; {
		case x == y:
			out = append(out, x)
			i++
			j++
		case x < y:
			i++
		default:
			j++
		}
	}
	return out
}

// union computes the two-pointer union of sorted lists.
func union(a, b []uint32) []uint32 {
	out := make([]uint32, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch x, y := a[i], b[j]; {
		case x == y:
			out = append(out, x)
			i++
			j++
		case x < y:
			out = append(out, x)
			i++
		default:
			out = append(out, y)
			j++
		}
	}
	out = append(out, a[i:]...)
	out = append(out, b[j:]...)
	return out
}

// complement returns {0..docCount-1} minus a, by one linear sweep of a.
func complement(docCount uint32, a []uint32) []uint32 {
	if uint32(len(a)) > docCount {
		a = a[:docCount]
	}
	out := make([]uint32, 0, docCount-uint32(len(a)))
	i := 0
	for d := uint32(0); d < docCount; d++ {
		for i < len(a) && a[i] < d {
			i++
		}
		if i < len(a) && a[i] == d {
			continue
		}
		out = append(out, d)
	}
	return out
}
