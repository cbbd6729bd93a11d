package dub

import (
	"fmt"
)

type matcher interface {
	match(i int) bool
}

type rangeMatch struct {
	start, end int
}

func (r rangeMatch) match(i int) bool {
	return (i >= r.start || r.start == -1) && (i <= r.end || r.end == -1)
}

var matchAll = rangeMatch{-1, -1}

type listMatch []int

func (l listMatch) match(i int) bool {
	for _, k := range l {
		if k == i {
			return true
		}
	}
	return false
}

// EvalMatchExpr returns the zero-based indexes of the steps in a sequence
// of n steps matched by expr. Steps in the expression are numbered from 1.
func EvalMatchExpr(expr MatchExpr, n int) ([]int, error) {
	for _, m := range expr.matchers {
		switch m := m.(type) {
		case listMatch:
			for _, k := range m {
				if k < 1 || k > n {
					return nil, fmt.Errorf("step %d out of range 1-%d", k, n)
				}
			}
		case rangeMatch:
			if m == matchAll {
				continue
			}
			if m.start < 1 || m.end > n {
				return nil, fmt.Errorf("steps %d:%d out of range 1-%d", m.start, m.end, n)
			}
			if m.start > m.end {
				return nil, fmt.Errorf("empty step range %d:%d", m.start, m.end)
			}
		}
	}
	var steps []int
	for i := 1; i <= n; i++ {
		for _, m := range expr.matchers {
			if m.match(i) {
				steps = append(steps, i-1)
				break
			}
		}
	}
	return steps, nil
}
