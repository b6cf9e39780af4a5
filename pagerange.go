package pdfit

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// PageIndexSet is an ordered list of 0-based page indices.
// Order follows the expression it was parsed from; duplicates are kept.
type PageIndexSet []int

// Contains reports whether idx is a member of the set.
func (s PageIndexSet) Contains(idx int) bool {
	for _, i := range s {
		if i == idx {
			return true
		}
	}
	return false
}

// ParseError describes a rejected token in a page expression.
type ParseError struct {
	Expr  string
	Token string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%v: %q in %q", e.Err, e.Token, e.Expr)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ParsePageRange parses a 1-based page range expression such as "1,3-5,7"
// into 0-based indices. "all" or an empty expression selects every page.
func ParsePageRange(expr string, pageCount int) (PageIndexSet, error) {
	if pageCount < 0 {
		return nil, &ParseError{Expr: expr, Token: strconv.Itoa(pageCount), Err: ErrOutOfRange}
	}
	trimmed := strings.TrimSpace(expr)
	if trimmed == "" || strings.EqualFold(trimmed, "all") {
		all := make(PageIndexSet, pageCount)
		for i := range all {
			all[i] = i
		}
		return all, nil
	}

	var out PageIndexSet
	for _, raw := range strings.Split(trimmed, ",") {
		token := strings.TrimSpace(raw)

		if start, end, isRange := strings.Cut(token, "-"); isRange {
			lo, err := parsePageNumber(expr, token, start)
			if err != nil {
				return nil, err
			}
			hi, err := parsePageNumber(expr, token, end)
			if err != nil {
				return nil, err
			}
			if lo > hi || lo < 1 || hi > pageCount {
				return nil, &ParseError{Expr: expr, Token: token, Err: ErrOutOfRange}
			}
			for p := lo; p <= hi; p++ {
				out = append(out, p-1)
			}
			continue
		}

		n, err := parsePageNumber(expr, token, token)
		if err != nil {
			return nil, err
		}
		if n < 1 || n > pageCount {
			return nil, &ParseError{Expr: expr, Token: token, Err: ErrOutOfRange}
		}
		out = append(out, n-1)
	}
	return out, nil
}

// ParsePageOrder parses a comma-separated list of 1-based page numbers into
// 0-based indices. The result is not required to be a permutation.
func ParsePageOrder(expr string, pageCount int) ([]int, error) {
	if strings.TrimSpace(expr) == "" {
		return nil, &ParseError{Expr: expr, Token: "", Err: ErrMalformed}
	}

	parts := strings.Split(expr, ",")
	order := make([]int, 0, len(parts))
	for _, raw := range parts {
		token := strings.TrimSpace(raw)
		n, err := parsePageNumber(expr, token, token)
		if err != nil {
			return nil, err
		}
		if n < 1 || n > pageCount {
			return nil, &ParseError{Expr: expr, Token: token, Err: ErrOutOfRange}
		}
		order = append(order, n-1)
	}
	return order, nil
}

// RequirePermutationLength rejects an order whose length differs from the
// document's page count. Callers that want a strict reorder apply it on top
// of ParsePageOrder.
func RequirePermutationLength(order []int, pageCount int) error {
	if len(order) != pageCount {
		return fmt.Errorf("%w: got %d entries for %d pages", ErrOrderLength, len(order), pageCount)
	}
	return nil
}

// parsePageNumber accepts unsigned decimal digits. A number too large for
// an int is well formed, just past any page count.
func parsePageNumber(expr, token, s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" || s[0] == '+' || s[0] == '-' {
		return 0, &ParseError{Expr: expr, Token: token, Err: ErrMalformed}
	}
	n, err := strconv.Atoi(s)
	if errors.Is(err, strconv.ErrRange) {
		return 0, &ParseError{Expr: expr, Token: token, Err: ErrOutOfRange}
	}
	if err != nil {
		return 0, &ParseError{Expr: expr, Token: token, Err: ErrMalformed}
	}
	return n, nil
}
