package mathexpr

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"math"
	"regexp"
	"strconv"
)

var evalConsts = map[string]float64{
	"pi":  math.Pi,
	"e":   math.E,
	"tau": 2 * math.Pi,
}

var evalFuncs = map[string]func(args []float64) (float64, error){
	"sqrt":  unary(math.Sqrt),
	"sin":   unary(math.Sin),
	"cos":   unary(math.Cos),
	"tan":   unary(math.Tan),
	"log":   unary(math.Log),
	"log10": unary(math.Log10),
	"exp":   unary(math.Exp),
	"ceil":  unary(math.Ceil),
	"floor": unary(math.Floor),
	"fabs":  unary(math.Abs),
	"abs":   unary(math.Abs),
	"round": unary(math.Round),
	"pow": func(args []float64) (float64, error) {
		if len(args) != 2 {
			return 0, fmt.Errorf("pow takes 2 arguments, got %d", len(args))
		}
		return math.Pow(args[0], args[1]), nil
	},
}

func unary(fn func(float64) float64) func(args []float64) (float64, error) {
	return func(args []float64) (float64, error) {
		if len(args) != 1 {
			return 0, fmt.Errorf("function takes 1 argument, got %d", len(args))
		}
		return fn(args[0]), nil
	}
}

// powOperandPat matches a single exponentiation operand: a function
// call, a parenthesized group, a number, or a bare identifier.
const powOperandPat = `(?:[a-z_][a-z0-9_]*\([^()]*\)|\([^()]*\)|\d+(?:\.\d+)?|[a-z_][a-z0-9_]*)`

var powRe = regexp.MustCompile(`(` + powOperandPat + `)\s*\*\*\s*(` + powOperandPat + `)`)

// rewritePow turns a ** b into pow(a, b), innermost-left first, until
// no ** remains. Go's expression grammar has no power operator.
func rewritePow(s string) string {
	for i := 0; i < 16; i++ {
		next := powRe.ReplaceAllString(s, `pow($1, $2)`)
		if next == s {
			return next
		}
		s = next
	}
	return s
}

// Evaluate parses a normalized arithmetic expression and computes it
// over float64, allowing only literals, the four basic operators with
// %, parentheses, whitelisted functions and the constants pi, e, tau.
func Evaluate(expr string) (float64, error) {
	node, err := parser.ParseExpr(rewritePow(expr))
	if err != nil {
		return 0, fmt.Errorf("parse expression: %w", err)
	}
	v, err := evalNode(node)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("expression result is not finite")
	}
	return v, nil
}

func evalNode(n ast.Expr) (float64, error) {
	switch e := n.(type) {
	case *ast.BasicLit:
		if e.Kind != token.INT && e.Kind != token.FLOAT {
			return 0, fmt.Errorf("unsupported literal %s", e.Value)
		}
		return strconv.ParseFloat(e.Value, 64)
	case *ast.ParenExpr:
		return evalNode(e.X)
	case *ast.Ident:
		if v, ok := evalConsts[e.Name]; ok {
			return v, nil
		}
		return 0, fmt.Errorf("unknown name %q", e.Name)
	case *ast.UnaryExpr:
		v, err := evalNode(e.X)
		if err != nil {
			return 0, err
		}
		switch e.Op {
		case token.SUB:
			return -v, nil
		case token.ADD:
			return v, nil
		}
		return 0, fmt.Errorf("unsupported unary operator %s", e.Op)
	case *ast.BinaryExpr:
		l, err := evalNode(e.X)
		if err != nil {
			return 0, err
		}
		r, err := evalNode(e.Y)
		if err != nil {
			return 0, err
		}
		switch e.Op {
		case token.ADD:
			return l + r, nil
		case token.SUB:
			return l - r, nil
		case token.MUL:
			return l * r, nil
		case token.QUO:
			if r == 0 {
				return 0, fmt.Errorf("division by zero")
			}
			return l / r, nil
		case token.REM:
			if r == 0 {
				return 0, fmt.Errorf("modulo by zero")
			}
			return math.Mod(l, r), nil
		}
		return 0, fmt.Errorf("unsupported operator %s", e.Op)
	case *ast.CallExpr:
		ident, ok := e.Fun.(*ast.Ident)
		if !ok {
			return 0, fmt.Errorf("unsupported call target")
		}
		fn, ok := evalFuncs[ident.Name]
		if !ok {
			return 0, fmt.Errorf("unknown function %q", ident.Name)
		}
		args := make([]float64, 0, len(e.Args))
		for _, a := range e.Args {
			v, err := evalNode(a)
			if err != nil {
				return 0, err
			}
			args = append(args, v)
		}
		return fn(args)
	}
	return 0, fmt.Errorf("unsupported expression node %T", n)
}
