// Package script compiles small JavaScript function sources into target
// functions that run over any scalar backend.
//
// The source is parsed with otto's parser and walked once; the resulting
// closures perform every arithmetic operation through the backend they are
// called with, so the same compiled program evaluates plain values, dual
// numbers and tape-recording variables.
//
// Supported subset:
//   - numeric literals, var declarations, assignment (=, +=, -=, *=, /=)
//   - + - * / and unary minus
//   - x[i] with a constant index on a single vector parameter, or several
//     scalar parameters
//   - Math.pow, exp, log, sqrt, sin, cos, tan, tanh, abs, min, max and the
//     constants Math.PI, Math.E
//   - if/else and ?: on comparisons (< <= > >= == != && || !)
//   - return of a number or an array literal of numbers
//
// Branches are decided on values. A recorded tape keeps only the branch taken
// while recording.
//
// Example:
//
//	prog, err := script.Compile(`function banana(x) {
//		return 100*Math.pow(x[1]-x[0]*x[0], 2) + Math.pow(1-x[0], 2);
//	}`)
//	jac, err := eval.New().Gradient(prog.Func, []float64{-1.2, 1})
package script

import (
	"errors"
	"fmt"
	"math"

	"github.com/robertkrimen/otto/ast"
	"github.com/robertkrimen/otto/parser"
	"github.com/robertkrimen/otto/token"
	"github.com/spf13/cast"

	"github.com/born-ml/fladiff/internal/scalar"
)

// Program is a compiled target function.
type Program struct {
	Name   string      // Function name from the declaration.
	Params []string    // Declared parameter names.
	Vector bool        // True if the single parameter is indexed as x[i].
	Inputs int         // Number of inputs the function reads.
	Source string      // Original source text.
	Func   scalar.Func // Compiled function.
}

// Compile parses src and compiles its first function declaration.
func Compile(src string) (prog *Program, err error) {
	program, err := parser.ParseFile(nil, "", src, 0)
	if err != nil {
		return nil, &SyntaxError{Err: err}
	}

	var fn *ast.FunctionLiteral
	for _, d := range program.DeclarationList {
		if fd, ok := d.(*ast.FunctionDeclaration); ok {
			fn = fd.Function
			break
		}
	}
	if fn == nil {
		return nil, &SyntaxError{Err: errors.New("no function declaration")}
	}

	c := newCompiler(src, fn)
	defer func() {
		if r := recover(); r != nil {
			unsupported, ok := r.(*UnsupportedError)
			if !ok {
				panic(r)
			}
			prog, err = nil, unsupported
		}
	}()

	body := c.statement(fn.Body)

	inputs := len(c.params)
	if c.vector {
		inputs = c.maxIndex + 1
	}
	locals := len(c.locals)
	name := ""
	if fn.Name != nil {
		name = fn.Name.Name
	}

	prog = &Program{
		Name:   name,
		Params: c.paramNames,
		Vector: c.vector,
		Inputs: inputs,
		Source: src,
	}
	vector := c.vector
	prog.Func = func(b scalar.Backend, x []scalar.Scalar) []scalar.Scalar {
		if len(x) < inputs || (!vector && len(x) != inputs) {
			panic(fmt.Errorf("%w: %s reads %d, got %d", ErrInputs, name, inputs, len(x)))
		}
		env := &env{b: b, x: x, locals: make([]scalar.Scalar, locals)}
		if out, ok := body(env); ok {
			return out
		}
		panic(fmt.Errorf("%w: %s", ErrNoReturn, name))
	}
	return prog, nil
}

// env is the state of one call of a compiled function.
type env struct {
	b      scalar.Backend
	x      []scalar.Scalar
	locals []scalar.Scalar
}

type (
	expr func(e *env) scalar.Scalar
	cond func(e *env) bool
	// stmt returns the function result and true once a return executes.
	stmt func(e *env) ([]scalar.Scalar, bool)
)

type compiler struct {
	src        string
	paramNames []string
	params     map[string]int
	vector     bool
	maxIndex   int
	locals     map[string]int
}

func newCompiler(src string, fn *ast.FunctionLiteral) *compiler {
	c := &compiler{
		src:      src,
		params:   make(map[string]int),
		locals:   make(map[string]int),
		maxIndex: -1,
	}
	for i, p := range fn.ParameterList.List {
		c.paramNames = append(c.paramNames, p.Name)
		c.params[p.Name] = i
	}

	// A single parameter used as x[i] makes the function take a vector.
	if len(c.paramNames) == 1 {
		finder := &indexFinder{param: c.paramNames[0]}
		ast.Walk(finder, fn.Body)
		c.vector = finder.found
	}

	// var declarations are function scoped.
	for _, d := range fn.DeclarationList {
		if vd, ok := d.(*ast.VariableDeclaration); ok {
			for _, v := range vd.List {
				if _, isParam := c.params[v.Name]; isParam {
					continue
				}
				if _, seen := c.locals[v.Name]; !seen {
					c.locals[v.Name] = len(c.locals)
				}
			}
		}
	}
	return c
}

// indexFinder looks for param[...] anywhere in the function body.
type indexFinder struct {
	param string
	found bool
}

func (f *indexFinder) Enter(n ast.Node) ast.Visitor {
	if f.found {
		return nil
	}
	if be, ok := n.(*ast.BracketExpression); ok {
		if id, ok := be.Left.(*ast.Identifier); ok && id.Name == f.param {
			f.found = true
			return nil
		}
	}
	return f
}

func (f *indexFinder) Exit(ast.Node) {}

// source returns the source text of n.
func (c *compiler) source(n ast.Node) string {
	idx0, idx1 := int(n.Idx0())-1, int(n.Idx1())-1
	if idx0 < 0 || idx1 > len(c.src) || idx0 >= idx1 {
		return ""
	}
	return c.src[idx0:idx1]
}

func (c *compiler) fail(n ast.Node, construct string) {
	panic(&UnsupportedError{Construct: construct, Source: c.source(n), Offset: int(n.Idx0()) - 1})
}

func (c *compiler) statement(s ast.Statement) stmt {
	switch s := s.(type) {
	case *ast.BlockStatement:
		list := make([]stmt, len(s.List))
		for i, inner := range s.List {
			list[i] = c.statement(inner)
		}
		return func(e *env) ([]scalar.Scalar, bool) {
			for _, st := range list {
				if out, ok := st(e); ok {
					return out, true
				}
			}
			return nil, false
		}

	case *ast.EmptyStatement:
		return func(*env) ([]scalar.Scalar, bool) { return nil, false }

	case *ast.VariableStatement:
		var inits []stmt
		for _, item := range s.List {
			v, ok := item.(*ast.VariableExpression)
			if !ok {
				c.fail(item, "variable declaration")
			}
			if v.Initializer == nil {
				continue
			}
			inits = append(inits, c.store(v, v.Name, c.expression(v.Initializer)))
		}
		return func(e *env) ([]scalar.Scalar, bool) {
			for _, st := range inits {
				st(e)
			}
			return nil, false
		}

	case *ast.ExpressionStatement:
		assign, ok := s.Expression.(*ast.AssignExpression)
		if !ok {
			c.fail(s, "expression statement")
		}
		return c.assign(assign)

	case *ast.IfStatement:
		test := c.condition(s.Test)
		then := c.statement(s.Consequent)
		otherwise := func(*env) ([]scalar.Scalar, bool) { return nil, false }
		if s.Alternate != nil {
			otherwise = c.statement(s.Alternate)
		}
		return func(e *env) ([]scalar.Scalar, bool) {
			if test(e) {
				return then(e)
			}
			return otherwise(e)
		}

	case *ast.ReturnStatement:
		if s.Argument == nil {
			c.fail(s, "return without value")
		}
		if arr, ok := s.Argument.(*ast.ArrayLiteral); ok {
			elems := make([]expr, len(arr.Value))
			for i, v := range arr.Value {
				elems[i] = c.expression(v)
			}
			return func(e *env) ([]scalar.Scalar, bool) {
				out := make([]scalar.Scalar, len(elems))
				for i, el := range elems {
					out[i] = el(e)
				}
				return out, true
			}
		}
		value := c.expression(s.Argument)
		return func(e *env) ([]scalar.Scalar, bool) {
			return []scalar.Scalar{value(e)}, true
		}

	default:
		c.fail(s, fmt.Sprintf("statement %T", s))
		return nil
	}
}

func (c *compiler) assign(a *ast.AssignExpression) stmt {
	id, ok := a.Left.(*ast.Identifier)
	if !ok {
		c.fail(a.Left, "assignment target")
	}
	right := c.expression(a.Right)

	var value expr
	switch a.Operator {
	case token.ASSIGN:
		value = right
	case token.PLUS, token.MINUS, token.MULTIPLY, token.SLASH:
		current := c.identifier(id)
		op := binaryOp(a.Operator)
		value = func(e *env) scalar.Scalar { return op(e.b, current(e), right(e)) }
	default:
		c.fail(a, "assignment operator "+a.Operator.String())
	}
	return c.store(a, id.Name, value)
}

func (c *compiler) store(n ast.Node, name string, value expr) stmt {
	if _, isParam := c.params[name]; isParam {
		c.fail(n, "assignment to parameter")
	}
	slot, ok := c.locals[name]
	if !ok {
		c.fail(n, "assignment to undeclared variable")
	}
	return func(e *env) ([]scalar.Scalar, bool) {
		e.locals[slot] = value(e)
		return nil, false
	}
}

func (c *compiler) expression(x ast.Expression) expr {
	switch x := x.(type) {
	case *ast.NumberLiteral:
		v, err := cast.ToFloat64E(x.Value)
		if err != nil {
			c.fail(x, "number literal")
		}
		return func(e *env) scalar.Scalar { return e.b.Const(v) }

	case *ast.Identifier:
		return c.identifier(x)

	case *ast.BracketExpression:
		return c.index(x)

	case *ast.UnaryExpression:
		operand := c.expression(x.Operand)
		switch x.Operator {
		case token.MINUS:
			return func(e *env) scalar.Scalar { return e.b.Neg(operand(e)) }
		case token.PLUS:
			return operand
		}
		c.fail(x, "unary operator "+x.Operator.String())

	case *ast.BinaryExpression:
		switch x.Operator {
		case token.PLUS, token.MINUS, token.MULTIPLY, token.SLASH:
			left, right := c.expression(x.Left), c.expression(x.Right)
			op := binaryOp(x.Operator)
			return func(e *env) scalar.Scalar { return op(e.b, left(e), right(e)) }
		}
		c.fail(x, "binary operator "+x.Operator.String())

	case *ast.ConditionalExpression:
		test := c.condition(x.Test)
		then, otherwise := c.expression(x.Consequent), c.expression(x.Alternate)
		return func(e *env) scalar.Scalar {
			if test(e) {
				return then(e)
			}
			return otherwise(e)
		}

	case *ast.DotExpression:
		if isMath(x.Left) {
			switch x.Identifier.Name {
			case "PI":
				return func(e *env) scalar.Scalar { return e.b.Const(math.Pi) }
			case "E":
				return func(e *env) scalar.Scalar { return e.b.Const(math.E) }
			}
		}
		c.fail(x, "property")

	case *ast.CallExpression:
		return c.call(x)
	}

	c.fail(x, fmt.Sprintf("expression %T", x))
	return nil
}

func (c *compiler) identifier(id *ast.Identifier) expr {
	if slot, ok := c.locals[id.Name]; ok {
		return func(e *env) scalar.Scalar {
			if v := e.locals[slot]; v != nil {
				return v
			}
			// Read before assignment: undefined, which is NaN in arithmetic.
			return e.b.Const(math.NaN())
		}
	}
	if i, ok := c.params[id.Name]; ok {
		if c.vector {
			c.fail(id, "vector parameter without index")
		}
		return func(e *env) scalar.Scalar { return e.x[i] }
	}
	c.fail(id, "undeclared identifier")
	return nil
}

func (c *compiler) index(x *ast.BracketExpression) expr {
	id, ok := x.Left.(*ast.Identifier)
	if !ok || !c.vector || id.Name != c.paramNames[0] {
		c.fail(x, "indexing")
	}
	lit, ok := x.Member.(*ast.NumberLiteral)
	if !ok {
		c.fail(x.Member, "non-constant index")
	}
	f, err := cast.ToFloat64E(lit.Value)
	if err != nil || f < 0 || f != math.Trunc(f) {
		c.fail(x.Member, "index")
	}
	i := int(f)
	c.maxIndex = max(c.maxIndex, i)
	return func(e *env) scalar.Scalar { return e.x[i] }
}

func (c *compiler) call(x *ast.CallExpression) expr {
	dot, ok := x.Callee.(*ast.DotExpression)
	if !ok || !isMath(dot.Left) {
		c.fail(x, "call")
	}
	name := dot.Identifier.Name
	args := make([]expr, len(x.ArgumentList))
	for i, a := range x.ArgumentList {
		args[i] = c.expression(a)
	}

	want := 1
	switch name {
	case "pow", "min", "max":
		want = 2
	}
	if len(args) != want {
		c.fail(x, fmt.Sprintf("Math.%s with %d arguments", name, len(args)))
	}

	if unary, ok := unaryMath[name]; ok {
		arg := args[0]
		return func(e *env) scalar.Scalar { return unary(e.b, arg(e)) }
	}

	a, b := args[0], args[1]
	switch name {
	case "pow":
		// A literal exponent keeps the derivative free of log(base).
		if p, ok := constant(x.ArgumentList[1]); ok {
			return func(e *env) scalar.Scalar { return e.b.PowReal(a(e), p) }
		}
		return func(e *env) scalar.Scalar { return e.b.Pow(a(e), b(e)) }
	case "min":
		return func(e *env) scalar.Scalar {
			va, vb := a(e), b(e)
			if vb.Float() < va.Float() {
				return vb
			}
			return va
		}
	case "max":
		return func(e *env) scalar.Scalar {
			va, vb := a(e), b(e)
			if vb.Float() > va.Float() {
				return vb
			}
			return va
		}
	}

	c.fail(x, "Math."+name)
	return nil
}

func (c *compiler) condition(x ast.Expression) cond {
	switch x := x.(type) {
	case *ast.BooleanLiteral:
		v := x.Value
		return func(*env) bool { return v }

	case *ast.UnaryExpression:
		if x.Operator == token.NOT {
			inner := c.condition(x.Operand)
			return func(e *env) bool { return !inner(e) }
		}

	case *ast.BinaryExpression:
		switch x.Operator {
		case token.LOGICAL_AND:
			l, r := c.condition(x.Left), c.condition(x.Right)
			return func(e *env) bool { return l(e) && r(e) }
		case token.LOGICAL_OR:
			l, r := c.condition(x.Left), c.condition(x.Right)
			return func(e *env) bool { return l(e) || r(e) }
		}
		if cmp, ok := comparisons[x.Operator]; ok {
			l, r := c.expression(x.Left), c.expression(x.Right)
			return func(e *env) bool { return cmp(l(e).Float(), r(e).Float()) }
		}
	}

	// Numeric truthiness: 0 and NaN are false.
	v := c.expression(x)
	return func(e *env) bool {
		f := v(e).Float()
		return f != 0 && !math.IsNaN(f)
	}
}

var comparisons = map[token.Token]func(a, b float64) bool{
	token.LESS:             func(a, b float64) bool { return a < b },
	token.LESS_OR_EQUAL:    func(a, b float64) bool { return a <= b },
	token.GREATER:          func(a, b float64) bool { return a > b },
	token.GREATER_OR_EQUAL: func(a, b float64) bool { return a >= b },
	token.EQUAL:            func(a, b float64) bool { return a == b },
	token.STRICT_EQUAL:     func(a, b float64) bool { return a == b },
	token.NOT_EQUAL:        func(a, b float64) bool { return a != b },
	token.STRICT_NOT_EQUAL: func(a, b float64) bool { return a != b },
}

var unaryMath = map[string]func(b scalar.Backend, x scalar.Scalar) scalar.Scalar{
	"exp":  scalar.Backend.Exp,
	"log":  scalar.Backend.Log,
	"sqrt": scalar.Backend.Sqrt,
	"sin":  scalar.Backend.Sin,
	"cos":  scalar.Backend.Cos,
	"tan":  scalar.Backend.Tan,
	"tanh": scalar.Backend.Tanh,
	"abs":  scalar.Backend.Abs,
}

func binaryOp(t token.Token) func(b scalar.Backend, x, y scalar.Scalar) scalar.Scalar {
	switch t {
	case token.PLUS:
		return scalar.Backend.Add
	case token.MINUS:
		return scalar.Backend.Sub
	case token.MULTIPLY:
		return scalar.Backend.Mul
	default:
		return scalar.Backend.Div
	}
}

func isMath(x ast.Expression) bool {
	id, ok := x.(*ast.Identifier)
	return ok && id.Name == "Math"
}

// constant reports the value of a numeric literal, possibly negated.
func constant(x ast.Expression) (float64, bool) {
	switch x := x.(type) {
	case *ast.NumberLiteral:
		v, err := cast.ToFloat64E(x.Value)
		return v, err == nil
	case *ast.UnaryExpression:
		if x.Operator == token.MINUS {
			v, ok := constant(x.Operand)
			return -v, ok
		}
	}
	return 0, false
}
