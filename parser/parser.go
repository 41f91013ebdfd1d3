// Package parser implements the recursive-descent TGL parser of
// spec.md §4.3. It drives lexer.NextToken one line at a time through an
// explicit line/column cursor (spec.md §9's design note prefers a small
// cursor struct over the original parser's threaded (line, pos) in/out
// parameters),
// builds the tagged-sum AST of package ast, and resolves names against
// a single flat ast.SymbolTable shared across the whole translation
// unit — matching original_source/tinyGPUlang/parser.cpp's defined_nodes,
// which is never cleared between kernels.
//
// All errors are fatal: the first one encountered aborts parsing and is
// returned as a *diag.Error. There is no recovery or accumulation,
// unlike naga's wgsl parser.
package parser

import (
	"strconv"
	"strings"

	"github.com/tinygpulang/tglc/ast"
	"github.com/tinygpulang/tglc/diag"
	"github.com/tinygpulang/tglc/lexer"
)

var operatorTokens = map[string]ast.BinaryOp{
	"+": ast.Add,
	"-": ast.Sub,
	"*": ast.Mul,
	"/": ast.Div,
}

// Parser holds the source lines and cursor state for one translation
// unit. It is not safe for concurrent use; spec.md §5 scopes a
// compilation to a single goroutine.
type Parser struct {
	lines   []string
	symbols *ast.SymbolTable

	line int // 0-based index into lines
	col  int // 0-based rune offset into the current line
}

// New constructs a Parser over src, split into lines. Line endings are
// stripped; blank lines and comment-only lines are skipped naturally by
// the cursor advance logic.
func New(src string) *Parser {
	return &Parser{
		lines:   strings.Split(src, "\n"),
		symbols: ast.NewSymbolTable(),
	}
}

// Parse consumes the whole translation unit and returns the resulting
// module, or the first fatal error encountered.
func (p *Parser) Parse() (mod *ast.Module, err error) {
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(*diag.Error); ok {
				mod, err = nil, e
				return
			}
			panic(r)
		}
	}()

	kernels := p.parseUnit()
	return &ast.Module{Kernels: kernels, Symbols: p.symbols}, nil
}

// fail raises a fatal diagnostic positioned at (line, col) (1-based) and
// unwinds to Parse via panic/recover, mirroring the original compiler's
// halt-on-first-error behavior without threading an error return through
// every recursive-descent level.
func (p *Parser) fail(line, col int, format string, args ...interface{}) {
	panic(diag.Newf(line, col, format, args...))
}

// --- cursor -----------------------------------------------------------

// advance consumes and returns the next non-empty token, skipping blank
// lines and comments, along with its 1-based line/column. An empty
// token text signals true end of input (no more lines).
func (p *Parser) advance() (tok string, line, col int) {
	for {
		if p.line >= len(p.lines) {
			return "", p.line + 1, 1
		}
		runes := []rune(p.lines[p.line])
		text, end := lexer.NextToken(runes, p.col)
		if text == "" {
			p.line++
			p.col = 0
			continue
		}
		line, col = p.line+1, p.col+1
		p.col = end
		return text, line, col
	}
}

// peek returns the next token without consuming it.
func (p *Parser) peek() (tok string, line, col int) {
	saveLine, saveCol := p.line, p.col
	tok, line, col = p.advance()
	p.line, p.col = saveLine, saveCol
	return
}

func (p *Parser) expect(want string) (line, col int) {
	tok, line, col := p.advance()
	if tok != want {
		p.fail(line, col, "expected %q, got %q", want, tok)
	}
	return
}

// checkLineParenBalance implements the line-level balance check of
// spec.md §4.3.4: counts '(' and ')' in the raw line on which the next
// statement starts, failing if they differ or the running count ever goes
// negative.
func (p *Parser) checkLineParenBalance() {
	tok, line, _ := p.peek()
	if tok == "" || line > len(p.lines) {
		return
	}
	balance := 0
	for _, r := range p.lines[line-1] {
		switch r {
		case '(':
			balance++
		case ')':
			balance--
		}
		if balance < 0 {
			p.fail(line, 1, "unbalanced parentheses")
		}
	}
	if balance != 0 {
		p.fail(line, 1, "unbalanced parentheses")
	}
}

// --- top level ----------------------------------------------------------

func (p *Parser) parseUnit() []*ast.Kernel {
	var kernels []*ast.Kernel
	for {
		tok, line, col := p.peek()
		if tok == "" {
			return kernels
		}
		if tok != "func" {
			p.fail(line, col, "illegal keyword: %s", tok)
		}
		p.advance()
		kernels = append(kernels, p.parseKernel())
	}
}

func (p *Parser) parseKernel() *ast.Kernel {
	scope := p.parseScope()
	vkind, dtype, isVoid := p.parseType(true)

	name, nameLine, nameCol := p.advance()
	if _, exists := p.symbols.Lookup(name); exists {
		p.fail(nameLine, nameCol, "duplicate kernel name: %s", name)
	}

	p.expect("(")
	args := p.parseParams()

	var ret *ast.Variable
	if !isVoid {
		ret = ast.NewVariable(vkind, dtype, "")
	}

	k := ast.NewKernel(name, scope, args, ret)
	p.symbols.DeclareKernel(k)

	p.parseKernelBody(k)
	return k
}

func (p *Parser) parseScope() ast.KernelScope {
	tok, line, col := p.advance()
	switch tok {
	case "global":
		return ast.Global
	case "device":
		return ast.Device
	default:
		p.fail(line, col, "unsupported scope keyword: %s", tok)
		return ast.Global
	}
}

// parseType reads a type specifier. When allowVoid is true, "void" is
// accepted and reported via the isVoid return.
func (p *Parser) parseType(allowVoid bool) (kind ast.VariableKind, dtype ast.DataType, isVoid bool) {
	tok, line, col := p.advance()
	if tok == "void" {
		if !allowVoid {
			p.fail(line, col, "void is only a legal return type")
		}
		return ast.Scalar, ast.Float32, true
	}
	if tok != "f32" {
		p.fail(line, col, "unsupported variable type: %s", tok)
	}
	if next, _, _ := p.peek(); next == "[" {
		p.advance()
		p.expect("]")
		return ast.Tensor, ast.Float32, false
	}
	return ast.Scalar, ast.Float32, false
}

func (p *Parser) parseParams() []*ast.Variable {
	var args []*ast.Variable
	if tok, _, _ := p.peek(); tok == ")" {
		p.advance()
		return args
	}
	for {
		vkind, dtype, _ := p.parseType(false)
		name, line, col := p.advance()
		if _, exists := p.symbols.Lookup(name); exists {
			p.fail(line, col, "duplicate parameter name: %s", name)
		}
		v := ast.NewVariable(vkind, dtype, name)
		p.symbols.Declare(name, v)
		args = append(args, v)

		tok, line, col := p.advance()
		if tok == ")" {
			return args
		}
		if tok != "," {
			p.fail(line, col, "expected , or ) in parameter list, got %s", tok)
		}
	}
}

// --- kernel body --------------------------------------------------------

func (p *Parser) parseKernelBody(k *ast.Kernel) {
	p.expect("{")

	hasReturn := false
	for {
		tok, _, _ := p.peek()
		if tok == "}" {
			p.advance()
			break
		}
		if tok == "" {
			_, line, col := p.advance()
			p.fail(line, col, "unexpected end of input, expected }")
		}

		p.checkLineParenBalance()
		stmt := p.parseStatement(k)
		if _, ok := stmt.(*ast.Return); ok {
			hasReturn = true
		}
		k.Body = append(k.Body, stmt)
	}

	if !hasReturn {
		p.fail(0, 0, "missing return statement in kernel: %s", k.Name)
	}
}

func (p *Parser) parseStatement(k *ast.Kernel) ast.Node {
	tok, line, col := p.peek()

	switch tok {
	case "var":
		return p.parseAliasDecl()
	case "return":
		return p.parseReturn(k)
	}

	name, nameLine, nameCol := p.advance()
	next, nextLine, nextCol := p.peek()

	switch next {
	case "=":
		p.advance()
		return p.parseAssignment(name, nameLine, nameCol, nextLine, nextCol)
	case "(":
		node := p.parseCall(name, nameLine, nameCol)
		p.expect(";")
		return node
	default:
		p.fail(line, col, "unexpected token: %s", tok)
		return nil
	}
}

func (p *Parser) parseAliasDecl() *ast.Alias {
	p.expect("var")
	name, line, col := p.advance()
	if _, exists := p.symbols.Lookup(name); exists {
		p.fail(line, col, "duplicate alias name: %s", name)
	}
	p.expect("=")
	src := p.parseExpr()
	p.expect(";")

	alias := ast.NewAlias(name, src)
	p.symbols.Declare(name, alias)
	return alias
}

func (p *Parser) parseAssignment(name string, nameLine, nameCol, eqLine, eqCol int) *ast.Assignment {
	node, exists := p.symbols.Lookup(name)
	if !exists {
		p.fail(eqLine, eqCol, "Assigning to undefined variable: %s", name)
	}
	target, ok := node.(*ast.Variable)
	if !ok || target.VKind != ast.Tensor {
		p.fail(nameLine, nameCol, "assignment target is not a tensor variable: %s", name)
	}

	src := p.parseExpr()
	p.expect(";")
	return ast.NewAssignment(target, src)
}

func (p *Parser) parseReturn(k *ast.Kernel) *ast.Return {
	p.expect("return")

	tok, line, col := p.peek()
	if tok == ";" {
		p.advance()
		if !k.IsVoid() {
			p.fail(line, col, "missing return value in non-void kernel: %s", k.Name)
		}
		return ast.NewReturn(nil)
	}

	value := p.parseExpr()
	p.expect(";")
	if k.IsVoid() {
		p.fail(line, col, "returning a value from void kernel: %s", k.Name)
	}
	return ast.NewReturn(value)
}

// --- expressions ---------------------------------------------------------

// parseExpr implements the precedence-climb of spec.md §4.3.5: read
// alternating operands and operators into two parallel lists, then
// repeatedly collapse the first occurrence of the highest-precedence
// operator. This yields left-to-right evaluation among equal
// precedences, since ties keep the earliest index.
func (p *Parser) parseExpr() ast.Node {
	var operands []ast.Node
	var ops []ast.BinaryOp

	operands = append(operands, p.parseOperand())
	for {
		tok, _, _ := p.peek()
		op, isOperator := operatorTokens[tok]
		if !isOperator {
			break
		}
		p.advance()
		ops = append(ops, op)
		operands = append(operands, p.parseOperand())
	}

	for len(ops) > 0 {
		bestIdx := 0
		bestPrec := ops[0].Precedence()
		for i, op := range ops {
			if op.Precedence() > bestPrec {
				bestPrec = op.Precedence()
				bestIdx = i
			}
		}

		node := ast.NewBinaryExpr(ops[bestIdx], operands[bestIdx], operands[bestIdx+1])

		merged := make([]ast.Node, 0, len(operands)-1)
		merged = append(merged, operands[:bestIdx]...)
		merged = append(merged, node)
		merged = append(merged, operands[bestIdx+2:]...)
		operands = merged

		ops = append(append([]ast.BinaryOp{}, ops[:bestIdx]...), ops[bestIdx+1:]...)
	}

	return operands[0]
}

func (p *Parser) parseOperand() ast.Node {
	tok, line, col := p.peek()

	switch tok {
	case "":
		p.fail(line, col, "unexpected end of input, expected operand")
	case "(":
		p.advance()
		e := p.parseExpr()
		p.expect(")")
		return e
	case ")", "}", "]", ",", ";", "=", "+", "-", "*", "/":
		p.fail(line, col, "expected operand, got %s", tok)
	}

	if strings.Contains(tok, ".") {
		p.advance()
		val, err := strconv.ParseFloat(tok, 32)
		if err != nil {
			p.fail(line, col, "malformed numeric literal: %s", tok)
		}
		return ast.NewConstant(float32(val), ast.Float32)
	}

	name, nameLine, nameCol := p.advance()
	if next, _, _ := p.peek(); next == "(" {
		return p.parseCall(name, nameLine, nameCol)
	}

	node, exists := p.symbols.Lookup(name)
	if !exists {
		p.fail(nameLine, nameCol, "undefined identifier: %s", name)
	}
	if _, isKernel := node.(*ast.Kernel); isKernel {
		p.fail(nameLine, nameCol, "%s names a kernel, expected a value", name)
	}
	return node
}

// parseCall parses the call-argument tail `( args? )` for a name already
// consumed by the caller, returning either a built-in ast.UnaryExpr or a
// user ast.KernelCall per spec.md §4.3.6.
func (p *Parser) parseCall(name string, nameLine, nameCol int) ast.Node {
	p.expect("(")

	var args []ast.Node
	if tok, _, _ := p.peek(); tok != ")" {
		for {
			args = append(args, p.parseExpr())
			tok, line, col := p.advance()
			if tok == ")" {
				break
			}
			if tok != "," {
				p.fail(line, col, "expected , or ) in argument list, got %s", tok)
			}
		}
	} else {
		p.advance()
	}

	if op, ok := ast.BuiltinUnary(name); ok {
		if len(args) != 1 {
			p.fail(nameLine, nameCol, "built-in %s expects exactly 1 argument, got %d", name, len(args))
		}
		return ast.NewUnaryExpr(op, args[0])
	}

	node, exists := p.symbols.Lookup(name)
	if !exists {
		p.fail(nameLine, nameCol, "undefined kernel: %s", name)
	}
	kernel, ok := node.(*ast.Kernel)
	if !ok {
		p.fail(nameLine, nameCol, "%s is not callable", name)
	}
	if len(args) != len(kernel.Args) {
		p.fail(nameLine, nameCol, "arity mismatch calling %s: expected %d, got %d", name, len(kernel.Args), len(args))
	}
	// A TENSOR parameter is GEP'd by the callee, so it needs an actual
	// tensor argument; a SCALAR parameter is used as-is (spec.md §4.4.8's
	// call arguments bypass the operand-read rule), so it accepts a
	// tensor argument too — S5 passes tensor args to a scalar-declared
	// device kernel. Only a non-tensor argument against a TENSOR
	// parameter is a real kind mismatch.
	for i, a := range args {
		if kernel.Args[i].VKind == ast.Tensor && ast.ValueKind(a) != ast.Tensor {
			p.fail(nameLine, nameCol, "argument %d kind mismatch calling %s", i+1, name)
		}
	}
	return ast.NewKernelCall(kernel, args)
}
