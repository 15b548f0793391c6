// Package query builds parameterized SELECT statements from a small typed
// expression tree. Identifiers are validated and backtick-quoted; values are
// returned separately as bound arguments.
package query

import (
	"fmt"
	"strconv"
	"strings"
)

type JoinKind string

const (
	InnerJoin JoinKind = "JOIN"
	LeftJoin  JoinKind = "LEFT JOIN"
)

type Join struct {
	Kind  JoinKind
	Table string
	On    Condition
}

// Select is a single SELECT statement. The zero Columns value selects "*".
type Select struct {
	From    string
	Columns []string
	Joins   []Join
	Where   Condition
	Limit   int
}

func From(table string) *Select {
	return &Select{From: table}
}

func (s *Select) Select(columns ...string) *Select {
	s.Columns = append([]string{}, columns...)
	return s
}

func (s *Select) Join(table string, on Condition) *Select {
	s.Joins = append(s.Joins, Join{Kind: InnerJoin, Table: table, On: on})
	return s
}

func (s *Select) LeftJoin(table string, on Condition) *Select {
	s.Joins = append(s.Joins, Join{Kind: LeftJoin, Table: table, On: on})
	return s
}

// Filter sets the WHERE condition. Calling it again ANDs the conditions.
func (s *Select) Filter(cond Condition) *Select {
	if s.Where == nil {
		s.Where = cond
	} else {
		s.Where = And(s.Where, cond)
	}
	return s
}

func (s *Select) WithLimit(n int) *Select {
	s.Limit = n
	return s
}

// Build renders the statement and its bound arguments.
func (s *Select) Build() (string, []any, error) {
	if s == nil {
		return "", nil, fmt.Errorf("nil select")
	}

	table, err := QuoteIdent(s.From)
	if err != nil {
		return "", nil, err
	}

	columns := s.Columns
	if len(columns) == 0 {
		columns = []string{"*"}
	}
	cols, err := QuoteIdents(columns)
	if err != nil {
		return "", nil, err
	}

	var b strings.Builder
	args := []any{}

	b.WriteString("SELECT ")
	b.WriteString(cols)
	b.WriteString(" FROM ")
	b.WriteString(table)

	for _, j := range s.Joins {
		joined, err := QuoteIdent(j.Table)
		if err != nil {
			return "", nil, err
		}
		kind := j.Kind
		if kind == "" {
			kind = InnerJoin
		}
		b.WriteString(" ")
		b.WriteString(string(kind))
		b.WriteString(" ")
		b.WriteString(joined)
		if j.On != nil {
			b.WriteString(" ON ")
			if err := j.On.render(&b, &args); err != nil {
				return "", nil, err
			}
		}
	}

	if s.Where != nil {
		b.WriteString(" WHERE ")
		if err := s.Where.render(&b, &args); err != nil {
			return "", nil, err
		}
	}

	if s.Limit < 0 {
		return "", nil, fmt.Errorf("negative limit %d", s.Limit)
	}
	if s.Limit > 0 {
		b.WriteString(" LIMIT ")
		b.WriteString(strconv.Itoa(s.Limit))
	}

	return b.String(), args, nil
}
