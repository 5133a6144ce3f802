package compiler

import (
	"math"
	"strconv"

	"github.com/nocturn9x/japl/object"
	"github.com/nocturn9x/japl/token"
)

// initRules builds the Pratt parse table. Token kinds not mentioned
// here have no parse rule (PREC_NONE, nil/nil functions), which is
// exactly right for tokens like DOT and LBRACKET: spec.md's
// lexer recognizes them (§4.3's token list) but no VM opcode exists
// for property or index access (§4.5), so they parse as statement/
// expression errors rather than silently compiling to nothing.
func (c *Compiler) initRules() {
	c.rules = map[token.Kind]parseRule{
		token.LPAREN:   {prefix: grouping, infix: call, precedence: PREC_CALL},
		token.MINUS:    {prefix: unary, infix: binaryOp, precedence: PREC_TERM},
		token.PLUS:     {infix: binaryOp, precedence: PREC_TERM},
		token.SLASH:    {infix: binaryOp, precedence: PREC_FACTOR},
		token.STAR:     {infix: binaryOp, precedence: PREC_FACTOR},
		token.PERCENT:  {infix: binaryOp, precedence: PREC_FACTOR},
		token.STARSTAR: {infix: binaryOp, precedence: PREC_POWER},
		token.CARET:    {infix: binaryOp, precedence: PREC_BITXOR},
		token.SHL:      {infix: binaryOp, precedence: PREC_SHIFT},
		token.SHR:      {infix: binaryOp, precedence: PREC_SHIFT},

		token.BANG_EQUAL:    {infix: binaryOp, precedence: PREC_EQUALITY},
		token.EQUAL_EQUAL:   {infix: binaryOp, precedence: PREC_EQUALITY},
		token.GREATER:       {infix: binaryOp, precedence: PREC_COMPARISON},
		token.GREATER_EQUAL: {infix: binaryOp, precedence: PREC_COMPARISON},
		token.LESS:          {infix: binaryOp, precedence: PREC_COMPARISON},
		token.LESS_EQUAL:    {infix: binaryOp, precedence: PREC_COMPARISON},

		token.BANG: {prefix: unary},

		token.AND: {infix: and_, precedence: PREC_AND},
		token.OR:  {infix: or_, precedence: PREC_OR},

		token.INTEGER:    {prefix: number},
		token.FLOAT:      {prefix: number},
		token.STRING:     {prefix: stringLit},
		token.TRUE:       {prefix: literal},
		token.FALSE:      {prefix: literal},
		token.NIL:        {prefix: literal},
		token.IDENTIFIER: {prefix: variable},
	}
}

func (c *Compiler) rule(kind token.Kind) parseRule { return c.rules[kind] }

// parsePrecedence is the core Pratt loop: it parses a prefix
// expression, then keeps consuming infix operators whose precedence
// is at least `precedence`.
func (c *Compiler) parsePrecedence(precedence int) {
	c.advance()
	prefix := c.rule(c.previous.Kind).prefix
	if prefix == nil {
		c.error("expected an expression")
		return
	}
	canAssign := precedence <= PREC_ASSIGNMENT
	prefix(c, canAssign)

	for precedence <= c.rule(c.current.Kind).precedence {
		c.advance()
		infix := c.rule(c.previous.Kind).infix
		infix(c, canAssign)
	}

	if canAssign && c.match(token.ASSIGN) {
		c.error("invalid assignment target")
	}
}

func (c *Compiler) expression() { c.parsePrecedence(PREC_ASSIGNMENT) }

// ---- prefix/infix parse functions ----

func grouping(c *Compiler, _ bool) {
	c.expression()
	c.consume(token.RPAREN, "expected ')' after expression")
}

func unary(c *Compiler, _ bool) {
	op := c.previous.Kind
	c.parsePrecedence(PREC_UNARY)
	switch op {
	case token.MINUS:
		c.emitOp(OP_NEGATE)
	case token.BANG:
		c.emitOp(OP_NOT)
	}
}

func binaryOp(c *Compiler, _ bool) {
	op := c.previous.Kind
	rule := c.rule(op)
	nextPrec := rule.precedence + 1
	if op == token.STARSTAR {
		// right-associative: re-parse at the same precedence level
		nextPrec = rule.precedence
	}
	c.parsePrecedence(nextPrec)

	switch op {
	case token.PLUS:
		c.emitOp(OP_ADD)
	case token.MINUS:
		c.emitOp(OP_SUB)
	case token.STAR:
		c.emitOp(OP_MUL)
	case token.SLASH:
		c.emitOp(OP_DIV)
	case token.PERCENT:
		c.emitOp(OP_MOD)
	case token.STARSTAR:
		c.emitOp(OP_POW)
	case token.CARET:
		c.emitOp(OP_XOR)
	case token.SHL:
		c.emitOp(OP_SHL)
	case token.SHR:
		c.emitOp(OP_SHR)
	case token.BANG_EQUAL:
		c.emitOp(OP_NE)
	case token.EQUAL_EQUAL:
		c.emitOp(OP_EQ)
	case token.GREATER:
		c.emitOp(OP_GT)
	case token.GREATER_EQUAL:
		c.emitOp(OP_GE)
	case token.LESS:
		c.emitOp(OP_LT)
	case token.LESS_EQUAL:
		c.emitOp(OP_LE)
	}
}

// and_ and or_ compile short-circuit boolean logic with jumps rather
// than the bitwise OP_AND/OP_OR opcodes (see DESIGN.md: those opcodes
// have no reachable surface syntax in this grammar).
func and_(c *Compiler, _ bool) {
	endJump := c.emitJump(OP_JUMP_IF_FALSE)
	c.emitOp(OP_POP)
	c.parsePrecedence(PREC_AND)
	c.patchJump(endJump)
}

func or_(c *Compiler, _ bool) {
	elseJump := c.emitJump(OP_JUMP_IF_FALSE)
	endJump := c.emitJump(OP_JUMP)
	c.patchJump(elseJump)
	c.emitOp(OP_POP)
	c.parsePrecedence(PREC_OR)
	c.patchJump(endJump)
}

func number(c *Compiler, _ bool) {
	lit := c.previous.Literal
	switch v := lit.(type) {
	case int64:
		c.emitConstant(object.Integer(v))
	case float64:
		// The lexer lexes the `inf`/`nan` keywords to a FLOAT token
		// carrying the corresponding math.Inf/math.NaN literal (spec.md
		// §4.3); route those to their dedicated Infinity/NaN object
		// variants and opcodes instead of wrapping them as object.Float,
		// so Tag/Stringify/Eq follow spec.md §3's tagged-variant model
		// rather than Go's own "+Inf"/"NaN" float formatting.
		switch {
		case math.IsNaN(v):
			c.emitOp(OP_NAN)
		case math.IsInf(v, 0):
			c.emitOp(OP_INF)
		default:
			c.emitConstant(object.Float(v))
		}
	default:
		// identifier() in the lexer already special-cases inf/nan to
		// FLOAT tokens; a bare INTEGER/FLOAT token always carries a
		// literal, so this path is unreachable for well-formed input.
		parsed, err := strconv.ParseFloat(c.previous.Lexeme, 64)
		if err != nil {
			c.error("malformed numeric literal")
			return
		}
		c.emitConstant(object.Float(parsed))
	}
}

func stringLit(c *Compiler, _ bool) {
	s := c.previous.Literal.(string)
	idx := c.unit.chunk().InternString(s)
	c.emitIndexed(OP_CONSTANT, OP_CONSTANT_LONG, idx)
}

func literal(c *Compiler, _ bool) {
	switch c.previous.Kind {
	case token.TRUE:
		c.emitOp(OP_TRUE)
	case token.FALSE:
		c.emitOp(OP_FALSE)
	case token.NIL:
		c.emitOp(OP_NIL)
	}
}

func variable(c *Compiler, canAssign bool) {
	c.namedVariable(c.previous, canAssign)
}

func (c *Compiler) namedVariable(name token.Token, canAssign bool) {
	isLocal, slot, nameIdx := c.resolveVariable(name)

	if canAssign && c.match(token.ASSIGN) {
		c.expression()
		if isLocal {
			c.emitInstruction(OP_SET_LOCAL, slot)
		} else {
			c.emitIndexed(OP_SET_GLOBAL, OP_SET_GLOBAL_LONG, nameIdx)
		}
		return
	}

	if isLocal {
		c.emitInstruction(OP_GET_LOCAL, slot)
	} else {
		c.emitIndexed(OP_GET_GLOBAL, OP_GET_GLOBAL_LONG, nameIdx)
	}
}

// resolveVariable decides whether `name` refers to a local or a
// global, per spec.md §4.4: "lookups walk from innermost to
// outermost; if not found, the name is emitted as a global access."
func (c *Compiler) resolveVariable(name token.Token) (isLocal bool, slot int, nameIdx int) {
	if s := resolveLocal(c.unit, name.Lexeme); s >= 0 {
		return true, s, 0
	}
	return false, 0, c.unit.chunk().AddName(name.Lexeme)
}

// resolveLocal scans u's locals from the end (innermost declaration
// wins, so shadowing works) and returns its slot, or -1 if not found
// in this function's locals. JAPL (like nilan and Lox) does not
// support closing over an enclosing function's locals as upvalues;
// an unresolved name always falls back to a global.
func resolveLocal(u *unit, name string) int {
	for i := len(u.locals) - 1; i >= 0; i-- {
		if u.locals[i].name == name {
			return i
		}
	}
	return -1
}

func call(c *Compiler, _ bool) {
	argCount := c.argumentList()
	c.emitInstruction(OP_CALL, argCount)
}

func (c *Compiler) argumentList() int {
	count := 0
	if !c.check(token.RPAREN) {
		for {
			c.expression()
			count++
			if count > 255 {
				c.error("can't pass more than 255 arguments")
			}
			if !c.match(token.COMMA) {
				break
			}
		}
	}
	c.consume(token.RPAREN, "expected ')' after arguments")
	return count
}
