package transform

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/Knetic/govaluate"
	"github.com/shopspring/decimal"

	"dte/internal/value"
	"dte/internal/xerr"
)

type assignment struct {
	name string
	expr *govaluate.EvaluableExpression
}

type inlineTransformer struct {
	assignments []assignment
}

// govaluateFunctions is the minimal standard function set bound into every
// inline expression (§9: "arithmetic/string/math functions").
var govaluateFunctions = map[string]govaluate.ExpressionFunction{
	"upper": func(args ...interface{}) (interface{}, error) {
		return strings.ToUpper(fmt.Sprint(args[0])), nil
	},
	"lower": func(args ...interface{}) (interface{}, error) {
		return strings.ToLower(fmt.Sprint(args[0])), nil
	},
	"len": func(args ...interface{}) (interface{}, error) {
		return float64(len(fmt.Sprint(args[0]))), nil
	},
	"concat": func(args ...interface{}) (interface{}, error) {
		var b strings.Builder
		for _, a := range args {
			b.WriteString(fmt.Sprint(a))
		}
		return b.String(), nil
	},
}

// concatOperator matches the `..` string-concatenation operator documented
// for inline expressions. govaluate has no such token, only `+`; since
// field access ("row.name") only ever uses a single dot, a literal `..` is
// unambiguous and always means concatenation.
var concatOperator = regexp.MustCompile(`\.\.`)

func rewriteConcat(expr string) string {
	return concatOperator.ReplaceAllString(expr, " + ")
}

// NewInline compiles a semicolon-separated `name=expression` assignment
// list (§4.5) once, so later row evaluation never touches the parser.
func NewInline(spec string) (Transformer, error) {
	var assignments []assignment
	for _, stmt := range strings.Split(spec, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		name, exprSrc, ok := strings.Cut(stmt, "=")
		if !ok {
			return nil, xerr.Transform("inline transform %q is not a name=expression assignment", stmt)
		}
		name = strings.TrimSpace(name)
		exprSrc = rewriteConcat(strings.TrimSpace(exprSrc))
		expr, err := govaluate.NewEvaluableExpressionWithFunctions(exprSrc, govaluateFunctions)
		if err != nil {
			return nil, xerr.Transform("compiling expression for %q: %v", name, err)
		}
		assignments = append(assignments, assignment{name: name, expr: expr})
	}
	return &inlineTransformer{assignments: assignments}, nil
}

// Apply evaluates every assignment against row and merges results in,
// additive semantics (§4.5): original columns survive, an assignment
// whose name matches an existing column replaces its value, new names are
// appended in declaration order.
func (t *inlineTransformer) Apply(row value.Row) (value.Row, bool, error) {
	out := value.NewRow(append([]value.Field(nil), row.Fields...)...)
	for _, a := range t.assignments {
		result, err := a.expr.Eval(rowParameters{row: out})
		if err != nil {
			return value.Row{}, false, xerr.Transform("evaluating %s: %v", a.name, err)
		}
		v, err := fromGovaluate(result)
		if err != nil {
			return value.Row{}, false, xerr.Transform("assigning %s: %v", a.name, err)
		}
		out = setField(out, a.name, v)
	}
	return out, false, nil
}

func setField(row value.Row, name string, v value.Value) value.Row {
	for i, f := range row.Fields {
		if f.Name == name {
			row.Fields[i].Value = v
			return row
		}
	}
	row.Fields = append(row.Fields, value.Field{Name: name, Value: v})
	return row
}

// rowParameters adapts a Row to govaluate.Parameters, exposing fields as
// "row.<name>".
type rowParameters struct {
	row value.Row
}

func (p rowParameters) Get(name string) (interface{}, error) {
	fieldName, ok := strings.CutPrefix(name, "row.")
	if !ok {
		return nil, fmt.Errorf("transform: unbound symbol %q", name)
	}
	return rowGetter(p.row, fieldName)
}

func fromGovaluate(result interface{}) (value.Value, error) {
	switch t := result.(type) {
	case nil:
		return value.Null(), nil
	case string:
		return value.NewString(t), nil
	case bool:
		return value.NewBoolean(t), nil
	case float64:
		if t == float64(int64(t)) {
			return value.NewInteger(int64(t)), nil
		}
		return value.NewDecimal(decimal.NewFromFloat(t)), nil
	default:
		return value.NewString(fmt.Sprint(t)), nil
	}
}
