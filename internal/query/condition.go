package query

import (
	"fmt"
	"strings"
)

// Condition is one node of a WHERE expression. Values are never written
// into the SQL text; they are appended to args as bound parameters.
type Condition interface {
	render(b *strings.Builder, args *[]any) error
}

type Op string

const (
	OpEq Op = "="
	OpNe Op = "<>"
	OpGt Op = ">"
	OpGe Op = ">="
	OpLt Op = "<"
	OpLe Op = "<="
)

type compare struct {
	column string
	op     Op
	value  any
}

func (c compare) render(b *strings.Builder, args *[]any) error {
	col, err := QuoteIdent(c.column)
	if err != nil {
		return err
	}
	switch c.op {
	case OpEq, OpNe, OpGt, OpGe, OpLt, OpLe:
	default:
		return fmt.Errorf("unsupported operator %q", c.op)
	}
	b.WriteString(col)
	b.WriteString(" ")
	b.WriteString(string(c.op))
	b.WriteString(" ?")
	*args = append(*args, c.value)
	return nil
}

func Compare(column string, op Op, value any) Condition {
	return compare{column: column, op: op, value: value}
}

func Eq(column string, value any) Condition { return Compare(column, OpEq, value) }
func Ne(column string, value any) Condition { return Compare(column, OpNe, value) }
func Gt(column string, value any) Condition { return Compare(column, OpGt, value) }
func Ge(column string, value any) Condition { return Compare(column, OpGe, value) }
func Lt(column string, value any) Condition { return Compare(column, OpLt, value) }
func Le(column string, value any) Condition { return Compare(column, OpLe, value) }

type columnsEqual struct {
	left, right string
}

func (c columnsEqual) render(b *strings.Builder, _ *[]any) error {
	left, err := QuoteIdent(c.left)
	if err != nil {
		return err
	}
	right, err := QuoteIdent(c.right)
	if err != nil {
		return err
	}
	b.WriteString(left + " = " + right)
	return nil
}

// ColumnsEqual compares two columns, as used in join predicates.
func ColumnsEqual(left, right string) Condition { return columnsEqual{left: left, right: right} }

type isNull struct {
	column string
	not    bool
}

func (c isNull) render(b *strings.Builder, _ *[]any) error {
	col, err := QuoteIdent(c.column)
	if err != nil {
		return err
	}
	b.WriteString(col)
	if c.not {
		b.WriteString(" IS NOT NULL")
	} else {
		b.WriteString(" IS NULL")
	}
	return nil
}

func IsNull(column string) Condition    { return isNull{column: column} }
func IsNotNull(column string) Condition { return isNull{column: column, not: true} }

type in struct {
	column string
	sub    *Select
	values []any
}

func (c in) render(b *strings.Builder, args *[]any) error {
	col, err := QuoteIdent(c.column)
	if err != nil {
		return err
	}
	b.WriteString(col)
	b.WriteString(" IN (")

	if c.sub != nil {
		sql, subArgs, err := c.sub.Build()
		if err != nil {
			return err
		}
		b.WriteString(sql)
		*args = append(*args, subArgs...)
	} else {
		if len(c.values) == 0 {
			return fmt.Errorf("IN on %s needs at least one value", c.column)
		}
		for i, v := range c.values {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString("?")
			*args = append(*args, v)
		}
	}

	b.WriteString(")")
	return nil
}

// InSubquery matches column against the rows of sub.
func InSubquery(column string, sub *Select) Condition { return in{column: column, sub: sub} }

func In(column string, values ...any) Condition { return in{column: column, values: values} }

type group struct {
	sep   string
	conds []Condition
}

func (g group) render(b *strings.Builder, args *[]any) error {
	if len(g.conds) == 0 {
		return fmt.Errorf("empty %s group", strings.TrimSpace(g.sep))
	}
	if len(g.conds) == 1 {
		return g.conds[0].render(b, args)
	}
	b.WriteString("(")
	for i, c := range g.conds {
		if i > 0 {
			b.WriteString(g.sep)
		}
		if err := c.render(b, args); err != nil {
			return err
		}
	}
	b.WriteString(")")
	return nil
}

func And(conds ...Condition) Condition { return group{sep: " AND ", conds: conds} }
func Or(conds ...Condition) Condition  { return group{sep: " OR ", conds: conds} }
