package compiler

import (
	"github.com/nocturn9x/japl/object"
	"github.com/nocturn9x/japl/token"
)

// declaration is the top-level production inside any block: a
// variable or function declaration, or a fall-through to statement.
// A parse error anywhere below causes the whole declaration to
// synchronize here, matching spec.md §4.4's panic-mode recovery.
func (c *Compiler) declaration() {
	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(panicSignal); !ok {
				panic(r)
			}
			c.synchronize()
		}
	}()

	switch {
	case c.match(token.VAR):
		c.varDeclaration()
	case c.match(token.FUN):
		c.funDeclaration()
	default:
		c.statement()
	}
}

func (c *Compiler) varDeclaration() {
	global, isLocal := c.parseVariable("expected a variable name")

	if c.match(token.ASSIGN) {
		c.expression()
	} else {
		c.emitOp(OP_NIL)
	}
	c.consume(token.SEMICOLON, "expected ';' after variable declaration")
	c.defineVariable(global, isLocal)
}

// parseVariable consumes the variable's name token and, for a local,
// declares it immediately (locals are resolved by scanning the locals
// array, so there is nothing further to emit); for a global it
// returns the name's constant-pool index to be finalized by
// defineVariable after the initializer compiles.
func (c *Compiler) parseVariable(message string) (nameIdx int, isLocal bool) {
	c.consume(token.IDENTIFIER, message)
	name := c.previous

	if c.unit.scopeDepth > 0 {
		c.declareLocal(name)
		return 0, true
	}
	return c.unit.chunk().AddName(name.Lexeme), false
}

func (c *Compiler) declareLocal(name token.Token) {
	for i := len(c.unit.locals) - 1; i >= 0; i-- {
		l := c.unit.locals[i]
		if l.initialized && l.depth < c.unit.scopeDepth {
			break
		}
		if l.name == name.Lexeme {
			c.error("a variable with this name already exists in this scope")
			return
		}
	}
	if len(c.unit.locals) >= 256 {
		c.error("too many local variables in one function")
		return
	}
	c.unit.locals = append(c.unit.locals, local{name: name.Lexeme, depth: c.unit.scopeDepth})
}

func (c *Compiler) defineVariable(nameIdx int, isLocal bool) {
	if isLocal {
		c.unit.locals[len(c.unit.locals)-1].initialized = true
		return
	}
	c.emitIndexed(OP_DEFINE_GLOBAL, OP_DEFINE_GLOBAL_LONG, nameIdx)
}

// funDeclaration compiles `fun name(params) { body }`. The function's
// own name is declared as a variable *before* its body is compiled
// (mirroring nilan's ordering), so a function can call itself
// recursively by name; the compiled Function is then emitted as a
// constant and bound to that variable.
func (c *Compiler) funDeclaration() {
	nameIdx, isLocal := c.parseVariable("expected a function name")
	if isLocal {
		c.unit.locals[len(c.unit.locals)-1].initialized = true
	}
	name := c.previous
	c.compileFunction(name.Lexeme)
	c.defineVariable(nameIdx, isLocal)
}

func (c *Compiler) compileFunction(name string) {
	fn := &object.Function{Name: object.NewString(name), Chunk: object.NewChunk()}
	enclosing := c.unit
	c.unit = &unit{enclosing: enclosing, function: fn}
	// slot 0 of every function's locals is reserved for the function
	// itself (spec.md §4.4), so parameters start at slot 1.
	c.unit.locals = append(c.unit.locals, local{name: "", depth: 0, initialized: true})

	c.beginScope()
	c.consume(token.LPAREN, "expected '(' after function name")
	if !c.check(token.RPAREN) {
		for {
			fn.Arity++
			if fn.Arity > 255 {
				c.error("can't have more than 255 parameters")
			}
			paramIdx, isLocal := c.parseVariable("expected a parameter name")
			c.defineVariable(paramIdx, isLocal)
			if !c.match(token.COMMA) {
				break
			}
		}
	}
	c.consume(token.RPAREN, "expected ')' after parameters")
	c.consume(token.LBRACE, "expected '{' before function body")
	c.block()
	c.emitReturn()

	compiled := c.unit.function
	c.unit = enclosing
	c.emitConstant(compiled)
}

// ---- scopes ----

func (c *Compiler) beginScope() { c.unit.scopeDepth++ }

func (c *Compiler) endScope() {
	c.unit.scopeDepth--
	for len(c.unit.locals) > 0 && c.unit.locals[len(c.unit.locals)-1].depth > c.unit.scopeDepth {
		c.emitOp(OP_POP)
		c.unit.locals = c.unit.locals[:len(c.unit.locals)-1]
	}
}

// ---- statements ----

func (c *Compiler) statement() {
	switch {
	case c.match(token.PRINT):
		c.printStatement()
	case c.match(token.IF):
		c.ifStatement()
	case c.match(token.WHILE):
		c.whileStatement()
	case c.match(token.FOR):
		c.forStatement()
	case c.match(token.RETURN):
		c.returnStatement()
	case c.match(token.BREAK):
		c.breakStatement()
	case c.match(token.CONTINUE):
		c.continueStatement()
	case c.match(token.DEL):
		c.delStatement()
	case c.match(token.LBRACE):
		c.beginScope()
		c.block()
		c.endScope()
	default:
		c.expressionStatement()
	}
}

func (c *Compiler) block() {
	for !c.check(token.RBRACE) && !c.check(token.EOF) {
		c.declaration()
	}
	c.consume(token.RBRACE, "expected '}' after block")
}

func (c *Compiler) expressionStatement() {
	c.expression()
	c.consume(token.SEMICOLON, "expected ';' after expression")
	c.emitOp(OP_POP)
}

func (c *Compiler) printStatement() {
	c.expression()
	c.consume(token.SEMICOLON, "expected ';' after value")
	c.emitOp(OP_PRINT)
}

func (c *Compiler) delStatement() {
	c.consume(token.IDENTIFIER, "expected a variable name after 'del'")
	name := c.previous
	c.consume(token.SEMICOLON, "expected ';' after del statement")

	if slot := resolveLocal(c.unit, name.Lexeme); slot >= 0 {
		c.error("cannot del a local variable")
		return
	}
	nameIdx := c.unit.chunk().AddName(name.Lexeme)
	c.emitIndexed(OP_DEL_GLOBAL, OP_DEL_GLOBAL_LONG, nameIdx)
}

func (c *Compiler) ifStatement() {
	c.consume(token.LPAREN, "expected '(' after 'if'")
	c.expression()
	c.consume(token.RPAREN, "expected ')' after condition")

	thenJump := c.emitJump(OP_JUMP_IF_FALSE)
	c.emitOp(OP_POP)
	c.statement()

	elseJump := c.emitJump(OP_JUMP)
	c.patchJump(thenJump)
	c.emitOp(OP_POP)

	if c.match(token.ELSE) {
		c.statement()
	}
	c.patchJump(elseJump)
}

func (c *Compiler) whileStatement() {
	loopStart := len(c.unit.chunk().Code)
	c.unit.loops = append(c.unit.loops, loopContext{start: loopStart, scopeDepth: c.unit.scopeDepth})

	c.consume(token.LPAREN, "expected '(' after 'while'")
	c.expression()
	c.consume(token.RPAREN, "expected ')' after condition")

	exitJump := c.emitJump(OP_JUMP_IF_FALSE)
	c.emitOp(OP_POP)
	c.statement()
	c.emitLoop(loopStart)

	c.patchJump(exitJump)
	c.emitOp(OP_POP)
	c.endLoop()
}

// forStatement desugars the C-style three-clause for loop to a while
// loop wrapped in its own scope, the same transform nilan's
// interpreter-level Visitor applies (spec.md §4.2's `for` has no
// opcode of its own; it is pure sugar).
func (c *Compiler) forStatement() {
	c.beginScope()
	c.consume(token.LPAREN, "expected '(' after 'for'")

	switch {
	case c.match(token.SEMICOLON):
		// no initializer
	case c.match(token.VAR):
		c.varDeclaration()
	default:
		c.expressionStatement()
	}

	loopStart := len(c.unit.chunk().Code)
	exitJump := -1
	if !c.check(token.SEMICOLON) {
		c.expression()
		c.consume(token.SEMICOLON, "expected ';' after loop condition")
		exitJump = c.emitJump(OP_JUMP_IF_FALSE)
		c.emitOp(OP_POP)
	} else {
		c.advance()
	}

	if !c.check(token.RPAREN) {
		bodyJump := c.emitJump(OP_JUMP)
		incrementStart := len(c.unit.chunk().Code)
		c.expression()
		c.emitOp(OP_POP)
		c.consume(token.RPAREN, "expected ')' after for clauses")

		c.emitLoop(loopStart)
		loopStart = incrementStart
		c.patchJump(bodyJump)
	} else {
		c.advance()
	}

	c.unit.loops = append(c.unit.loops, loopContext{start: loopStart, scopeDepth: c.unit.scopeDepth})
	c.statement()
	c.emitLoop(loopStart)

	if exitJump != -1 {
		c.patchJump(exitJump)
		c.emitOp(OP_POP)
	}
	c.endLoop()
	c.endScope()
}

// endLoop patches every pending `break` jump recorded for the
// innermost loop and pops its loopContext.
func (c *Compiler) endLoop() {
	loops := c.unit.loops
	top := loops[len(loops)-1]
	for _, pos := range top.breaks {
		c.patchJump(pos)
	}
	c.unit.loops = loops[:len(loops)-1]
}

func (c *Compiler) breakStatement() {
	c.consume(token.SEMICOLON, "expected ';' after 'break'")
	if len(c.unit.loops) == 0 {
		c.error("'break' outside of a loop")
		return
	}
	c.popLocalsAbove(c.unit.loops[len(c.unit.loops)-1].scopeDepth)
	pos := c.emitJump(OP_JUMP)
	top := len(c.unit.loops) - 1
	c.unit.loops[top].breaks = append(c.unit.loops[top].breaks, pos)
}

func (c *Compiler) continueStatement() {
	c.consume(token.SEMICOLON, "expected ';' after 'continue'")
	if len(c.unit.loops) == 0 {
		c.error("'continue' outside of a loop")
		return
	}
	loop := c.unit.loops[len(c.unit.loops)-1]
	c.popLocalsAbove(loop.scopeDepth)
	c.emitLoop(loop.start)
}

// popLocalsAbove emits OP_POP for every local declared deeper than
// depth, without mutating c.unit.locals (the enclosing endScope/
// endLoop call still owns removing them from the compile-time array).
func (c *Compiler) popLocalsAbove(depth int) {
	for i := len(c.unit.locals) - 1; i >= 0 && c.unit.locals[i].depth > depth; i-- {
		c.emitOp(OP_POP)
	}
}

func (c *Compiler) returnStatement() {
	if c.unit.enclosing == nil {
		c.error("cannot return from top-level code")
	}
	if c.match(token.SEMICOLON) {
		c.emitReturn()
		return
	}
	c.expression()
	c.consume(token.SEMICOLON, "expected ';' after return value")
	c.emitOp(OP_RETURN)
}
