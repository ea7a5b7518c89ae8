// Package view renders session state as HTML fragments. Components live in
// view.templ; run `templ generate` after editing it.
package view

import (
	"strconv"

	"github.com/okian/cricscore/internal/domain/match"
)

//go:generate templ generate -f view.templ

func intValue(v match.Int) string {
	n, ok := v.Get()
	if !ok {
		return ""
	}
	return strconv.Itoa(n)
}

func number(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
