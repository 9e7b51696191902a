package syntax

import (
	"fmt"
	"strconv"
	"strings"

	"vclcore/internal/ast"
)

// Parser is a recursive-descent parser over a token stream, turning VCL
// source into an *ast.Program. It is permissive about the things real VCL
// is permissive about (expression-statement calls, optional semicolons
// after closing braces) and collects diagnostics instead of aborting on
// the first unexpected token, so a single typo doesn't blank out an
// otherwise-valid document's analysis.
type Parser struct {
	toks        []Token
	pos         int
	Diagnostics []string
}

// Parse tokenizes and parses src into a Program.
func Parse(src string) (*ast.Program, []string) {
	p := &Parser{toks: Tokenize(src)}
	prog := p.parseProgram()
	return prog, p.Diagnostics
}

func (p *Parser) cur() Token  { return p.toks[p.pos] }
func (p *Parser) at(t TokenType) bool { return p.cur().Type == t }

func (p *Parser) atKeyword(kw string) bool {
	return p.cur().Type == IDENT && p.cur().Value == kw
}

func (p *Parser) advance() Token {
	t := p.toks[p.pos]
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

func (p *Parser) expect(t TokenType) Token {
	if p.cur().Type != t {
		p.errorf("expected %s, got %s %q", t, p.cur().Type, p.cur().Value)
		return p.cur()
	}
	return p.advance()
}

func (p *Parser) expectKeyword(kw string) Token {
	if !p.atKeyword(kw) {
		p.errorf("expected keyword %q, got %q", kw, p.cur().Value)
		return p.cur()
	}
	return p.advance()
}

func (p *Parser) errorf(format string, args ...any) {
	tok := p.cur()
	p.Diagnostics = append(p.Diagnostics, fmt.Sprintf("%d:%d: %s", tok.Line, tok.Col, fmt.Sprintf(format, args...)))
}

func pos(t Token) ast.Pos { return ast.Pos{Line: t.Line, Col: t.Col} }

// syncToTopLevel skips tokens until a recognizable declaration keyword or
// EOF, so one malformed declaration doesn't cascade into spurious errors
// for the rest of the file.
func (p *Parser) syncToTopLevel() {
	for !p.at(EOF) {
		if p.cur().Type == IDENT {
			switch p.cur().Value {
			case "sub", "acl", "backend", "director", "table", "penaltybox", "ratecounter", "vcl", "import", "include":
				return
			}
		}
		p.advance()
	}
}

func (p *Parser) parseProgram() *ast.Program {
	prog := &ast.Program{}
	for !p.at(EOF) {
		if p.at(ILLEGAL) {
			p.advance()
			continue
		}
		if !p.at(IDENT) {
			p.advance()
			continue
		}
		switch p.cur().Value {
		case "vcl":
			p.advance()
			prog.Version = p.cur().Value
			p.advance() // version number/ident
			p.expect(SEMI)
		case "import":
			p.advance()
			p.advance()
			p.expect(SEMI)
		case "include":
			p.advance()
			p.advance()
			p.expect(SEMI)
		case "sub":
			if s := p.parseSub(); s != nil {
				prog.Subroutines = append(prog.Subroutines, s)
			}
		case "acl":
			if a := p.parseACL(); a != nil {
				prog.ACLs = append(prog.ACLs, a)
			}
		case "backend":
			if b := p.parseBackend(); b != nil {
				prog.Backends = append(prog.Backends, b)
			}
		case "director":
			if d := p.parseDirector(); d != nil {
				prog.Directors = append(prog.Directors, d)
			}
		case "table":
			if t := p.parseTable(); t != nil {
				prog.Tables = append(prog.Tables, t)
			}
		case "penaltybox":
			p.advance()
			name := p.expect(IDENT).Value
			p.expect(LBRACE)
			p.expect(RBRACE)
			prog.Penaltyboxes = append(prog.Penaltyboxes, &ast.PenaltyboxDecl{Name: name})
		case "ratecounter":
			p.advance()
			name := p.expect(IDENT).Value
			p.expect(LBRACE)
			p.expect(RBRACE)
			prog.Ratecounters = append(prog.Ratecounters, &ast.RatecounterDecl{Name: name})
		default:
			p.errorf("unexpected top-level token %q", p.cur().Value)
			p.syncToTopLevel()
		}
	}
	return prog
}

func (p *Parser) parseSub() *ast.Subroutine {
	start := p.advance() // 'sub'
	name := p.expect(IDENT).Value
	sub := &ast.Subroutine{Name: name, Pos: pos(start)}

	if p.at(LPAREN) {
		p.advance()
		for !p.at(RPAREN) && !p.at(EOF) {
			pname := p.expect(IDENT).Value
			ptype := ""
			if p.at(COLON) {
				p.advance()
				ptype = p.expect(IDENT).Value
			}
			sub.Params = append(sub.Params, ast.Param{Name: pname, Type: ptype})
			if p.at(COMMA) {
				p.advance()
			}
		}
		p.expect(RPAREN)
	}
	if p.at(IDENT) && !p.at(LBRACE) {
		sub.ReturnType = p.advance().Value
	}
	sub.Body = p.parseBlock()
	return sub
}

func (p *Parser) parseBlock() []ast.Statement {
	p.expect(LBRACE)
	var stmts []ast.Statement
	for !p.at(RBRACE) && !p.at(EOF) {
		stmts = append(stmts, p.parseStatement())
	}
	p.expect(RBRACE)
	return stmts
}

func (p *Parser) parseStatement() ast.Statement {
	if p.at(IDENT) {
		switch p.cur().Value {
		case "if":
			return p.parseIf()
		case "set":
			return p.parseSet()
		case "unset":
			return p.parseUnsetLike(func(b ast.Pos, t string) ast.Statement { return &ast.UnsetStatement{Target: t} })
		case "remove":
			return p.parseUnsetLike(func(b ast.Pos, t string) ast.Statement { return &ast.RemoveStatement{Target: t} })
		case "add":
			return p.parseAdd()
		case "declare":
			return p.parseDeclare()
		case "return":
			return p.parseReturn()
		case "error":
			return p.parseError()
		case "log":
			return p.parseLog()
		case "synthetic":
			return p.parseSynthetic(false)
		case "synthetic.base64":
			return p.parseSynthetic(true)
		case "goto":
			return p.parseGoto()
		case "restart":
			p.advance()
			p.expect(SEMI)
			return &ast.RestartStatement{}
		case "call":
			return p.parseCall()
		case "switch":
			return p.parseSwitch()
		case "esi":
			p.advance()
			p.expect(SEMI)
			return &ast.EsiStatement{}
		}
		// label: IDENT ':' or hash_data(...) expression-statement
		if p.toks[p.pos+1].Type == COLON {
			name := p.advance().Value
			p.advance() // ':'
			return &ast.LabelStatement{Name: name}
		}
		if p.cur().Value == "hash_data" {
			p.advance()
			p.expect(LPAREN)
			val := p.parseExpression()
			p.expect(RPAREN)
			p.expect(SEMI)
			return &ast.HashDataStatement{Value: val}
		}
	}
	// fallback: expression statement (bare function call, e.g. std.syslog(...))
	expr := p.parseExpression()
	p.expect(SEMI)
	return &ast.ExpressionStatement{Expr: expr}
}

func (p *Parser) parseIf() ast.Statement {
	start := p.advance() // 'if'
	p.expect(LPAREN)
	test := p.parseExpression()
	p.expect(RPAREN)
	cons := p.parseBlock()
	var alt []ast.Statement
	if p.atKeyword("elsif") || p.atKeyword("elseif") {
		alt = []ast.Statement{p.parseElsif()}
	} else if p.atKeyword("else") {
		p.advance()
		if p.atKeyword("if") {
			alt = []ast.Statement{p.parseIf()}
		} else {
			alt = p.parseBlock()
		}
	}
	return ast.NewIf(pos(start), test, cons, alt)
}

func (p *Parser) parseElsif() ast.Statement {
	start := p.advance() // 'elsif'/'elseif'
	p.expect(LPAREN)
	test := p.parseExpression()
	p.expect(RPAREN)
	cons := p.parseBlock()
	var alt []ast.Statement
	if p.atKeyword("elsif") || p.atKeyword("elseif") {
		alt = []ast.Statement{p.parseElsif()}
	} else if p.atKeyword("else") {
		p.advance()
		if p.atKeyword("if") {
			alt = []ast.Statement{p.parseIf()}
		} else {
			alt = p.parseBlock()
		}
	}
	return ast.NewIf(pos(start), test, cons, alt)
}

func (p *Parser) parseTargetPath() string {
	var sb strings.Builder
	sb.WriteString(p.expect(IDENT).Value)
	for p.at(DOT) {
		p.advance()
		sb.WriteByte('.')
		sb.WriteString(p.expect(IDENT).Value)
	}
	return sb.String()
}

var setOps = map[TokenType]ast.SetOperator{
	ASSIGN: ast.OpAssign, ADD_ASSIGN: ast.OpAddAssign, SUB_ASSIGN: ast.OpSubAssign,
	MUL_ASSIGN: ast.OpMulAssign, DIV_ASSIGN: ast.OpDivAssign, MOD_ASSIGN: ast.OpModAssign,
	AND_ASSIGN: ast.OpAndAssign, OR_ASSIGN: ast.OpOrAssign, BAND_ASSIGN: ast.OpBAndAssign,
	BOR_ASSIGN: ast.OpBOrAssign, XOR_ASSIGN: ast.OpXorAssign,
	SHL_ASSIGN: ast.OpShlAssign, SHR_ASSIGN: ast.OpShrAssign,
}

func (p *Parser) parseSet() ast.Statement {
	p.advance() // 'set'
	target := p.parseTargetPath()
	op, ok := setOps[p.cur().Type]
	if !ok {
		p.errorf("expected assignment operator, got %q", p.cur().Value)
		op = ast.OpAssign
	}
	p.advance()
	val := p.parseExpression()
	p.expect(SEMI)
	return &ast.SetStatement{Target: target, Operator: op, Value: val}
}

func (p *Parser) parseUnsetLike(build func(ast.Pos, string) ast.Statement) ast.Statement {
	p.advance() // 'unset'/'remove'
	target := p.parseTargetPath()
	if p.at(DOT) {
		p.advance()
		target += ".*"
	}
	p.expect(SEMI)
	return build(ast.Pos{}, target)
}

func (p *Parser) parseAdd() ast.Statement {
	p.advance() // 'add'
	target := p.parseTargetPath()
	p.expect(ASSIGN)
	val := p.parseExpression()
	p.expect(SEMI)
	return &ast.AddStatement{Target: target, Value: val}
}

func (p *Parser) parseDeclare() ast.Statement {
	p.advance() // 'declare'
	if p.atKeyword("local") {
		p.advance()
	}
	name := p.parseTargetPath() // e.g. "var.counter"
	name = strings.TrimPrefix(name, "var.")
	typ := p.expect(IDENT).Value
	var initial ast.Expression
	if p.at(ASSIGN) {
		p.advance()
		initial = p.parseExpression()
	}
	p.expect(SEMI)
	return &ast.DeclareStatement{Name: name, Type: typ, Initial: initial}
}

func (p *Parser) parseReturn() ast.Statement {
	p.advance() // 'return'
	stmt := &ast.ReturnStatement{}
	if p.at(SEMI) {
		p.advance()
		return stmt
	}
	if p.at(LPAREN) {
		p.advance()
		if p.at(IDENT) && (p.toks[p.pos+1].Type == RPAREN) {
			stmt.Action = p.advance().Value
		} else if !p.at(RPAREN) {
			stmt.Value = p.parseExpression()
		}
		p.expect(RPAREN)
	} else if p.at(IDENT) {
		stmt.Action = p.advance().Value
	}
	p.expect(SEMI)
	return stmt
}

func (p *Parser) parseError() ast.Statement {
	p.advance() // 'error'
	stmt := &ast.ErrorStatement{}
	if !p.at(SEMI) {
		stmt.Status = p.parseExpression()
		if p.at(COMMA) {
			p.advance()
			stmt.Message = p.parseExpression()
		}
	}
	p.expect(SEMI)
	return stmt
}

func (p *Parser) parseLog() ast.Statement {
	p.advance() // 'log'
	msg := p.parseExpression()
	p.expect(SEMI)
	return &ast.LogStatement{Message: msg}
}

func (p *Parser) parseSynthetic(base64 bool) ast.Statement {
	p.advance() // 'synthetic' / 'synthetic.base64'
	val := p.parseExpression()
	p.expect(SEMI)
	if base64 {
		return &ast.SyntheticBase64Statement{Encoded: val}
	}
	return &ast.SyntheticStatement{Content: val}
}

func (p *Parser) parseGoto() ast.Statement {
	p.advance() // 'goto'
	label := p.expect(IDENT).Value
	p.expect(SEMI)
	return &ast.GotoStatement{Label: label}
}

func (p *Parser) parseCall() ast.Statement {
	p.advance() // 'call'
	name := p.expect(IDENT).Value
	var args []ast.Expression
	if p.at(LPAREN) {
		p.advance()
		for !p.at(RPAREN) && !p.at(EOF) {
			args = append(args, p.parseExpression())
			if p.at(COMMA) {
				p.advance()
			}
		}
		p.expect(RPAREN)
	}
	p.expect(SEMI)
	return &ast.CallStatement{Name: name, Args: args}
}

func (p *Parser) parseSwitch() ast.Statement {
	p.advance() // 'switch'
	p.expect(LPAREN)
	subj := p.parseExpression()
	p.expect(RPAREN)
	p.expect(LBRACE)
	var cases []ast.SwitchCase
	for p.atKeyword("case") || p.atKeyword("default") {
		var c ast.SwitchCase
		if p.atKeyword("case") {
			p.advance()
			c.Test = p.parseExpression()
		} else {
			p.advance()
		}
		p.expect(COLON)
		for !p.atKeyword("case") && !p.atKeyword("default") && !p.at(RBRACE) && !p.at(EOF) {
			if p.atKeyword("break") {
				p.advance()
				p.expect(SEMI)
				c.Fallthrough = false
				goto nextCase
			}
			if p.atKeyword("fallthrough") {
				p.advance()
				p.expect(SEMI)
				c.Fallthrough = true
				goto nextCase
			}
			c.Body = append(c.Body, p.parseStatement())
		}
	nextCase:
		cases = append(cases, c)
	}
	p.expect(RBRACE)
	return &ast.SwitchStatement{Subject: subj, Cases: cases}
}

// --- Expressions: precedence-climbing, low to high. ---

func (p *Parser) parseExpression() ast.Expression {
	return p.parseTernary()
}

func (p *Parser) parseTernary() ast.Expression {
	cond := p.parseOr()
	if p.at(QUESTION) {
		p.advance()
		cons := p.parseExpression()
		p.expect(COLON)
		alt := p.parseExpression()
		return &ast.TernaryExpression{Test: cond, Consequent: cons, Alternate: alt}
	}
	return cond
}

func (p *Parser) parseOr() ast.Expression {
	left := p.parseAnd()
	for p.at(LOR) {
		p.advance()
		right := p.parseAnd()
		left = &ast.BinaryExpression{Operator: ast.BinOr, Left: left, Right: right}
	}
	return left
}

func (p *Parser) parseAnd() ast.Expression {
	left := p.parseEquality()
	for p.at(LAND) {
		p.advance()
		right := p.parseEquality()
		left = &ast.BinaryExpression{Operator: ast.BinAnd, Left: left, Right: right}
	}
	return left
}

var equalityOps = map[TokenType]ast.BinaryOperator{
	EQ: ast.BinEq, NE: ast.BinNeq, MATCH: ast.BinMatch, NOMATCH: ast.BinNotMatch,
}

func (p *Parser) parseEquality() ast.Expression {
	left := p.parseRelational()
	for {
		op, ok := equalityOps[p.cur().Type]
		if !ok {
			return left
		}
		p.advance()
		right := p.parseRelational()
		left = &ast.BinaryExpression{Operator: op, Left: left, Right: right}
	}
}

var relOps = map[TokenType]ast.BinaryOperator{
	LT: ast.BinLt, LE: ast.BinLte, GT: ast.BinGt, GE: ast.BinGte,
}

func (p *Parser) parseRelational() ast.Expression {
	left := p.parseAdditive()
	for {
		op, ok := relOps[p.cur().Type]
		if !ok {
			return left
		}
		p.advance()
		right := p.parseAdditive()
		left = &ast.BinaryExpression{Operator: op, Left: left, Right: right}
	}
}

func (p *Parser) parseAdditive() ast.Expression {
	left := p.parseMultiplicative()
	for p.at(PLUS) || p.at(MINUS) {
		op := ast.BinAdd
		if p.at(MINUS) {
			op = ast.BinSub
		}
		p.advance()
		right := p.parseMultiplicative()
		left = &ast.BinaryExpression{Operator: op, Left: left, Right: right}
	}
	return left
}

func (p *Parser) parseMultiplicative() ast.Expression {
	left := p.parseConcat()
	for p.at(STAR) || p.at(SLASH) || p.at(PERCENT) {
		var op ast.BinaryOperator
		switch p.cur().Type {
		case STAR:
			op = ast.BinMul
		case SLASH:
			op = ast.BinDiv
		case PERCENT:
			op = ast.BinMod
		}
		p.advance()
		right := p.parseConcat()
		left = &ast.BinaryExpression{Operator: op, Left: left, Right: right}
	}
	return left
}

// parseConcat implements VCL's juxtaposition string concatenation: two
// adjacent primary expressions with no operator between them are
// concatenated (§3.4). Detected by "the next token can start a primary
// expression and we are not mid-way through a higher-precedence parse".
func (p *Parser) parseConcat() ast.Expression {
	left := p.parseUnary()
	for p.startsPrimary() {
		right := p.parseUnary()
		left = &ast.BinaryExpression{Operator: ast.BinConcat, Left: left, Right: right}
	}
	return left
}

func (p *Parser) startsPrimary() bool {
	switch p.cur().Type {
	case STRING, NUMBER, IDENT, LPAREN, NOT:
		return true
	default:
		return false
	}
}

func (p *Parser) parseUnary() ast.Expression {
	if p.at(NOT) {
		p.advance()
		return &ast.UnaryExpression{Operator: ast.UnaryNot, Operand: p.parseUnary()}
	}
	if p.at(MINUS) {
		p.advance()
		return &ast.UnaryExpression{Operator: ast.UnaryNeg, Operand: p.parseUnary()}
	}
	return p.parsePostfix()
}

func (p *Parser) parsePostfix() ast.Expression {
	expr := p.parsePrimary()
	for p.at(DOT) {
		p.advance()
		prop := p.expect(IDENT).Value
		expr = &ast.MemberAccess{Object: expr, Property: prop}
	}
	return expr
}

func (p *Parser) parsePrimary() ast.Expression {
	tok := p.cur()
	switch tok.Type {
	case STRING:
		p.advance()
		return &ast.StringLiteral{Value: tok.Value}
	case NUMBER:
		p.advance()
		return parseNumberLiteral(tok)
	case LPAREN:
		p.advance()
		inner := p.parseExpression()
		p.expect(RPAREN)
		return inner
	case IDENT:
		return p.parseIdentOrCall()
	default:
		p.errorf("unexpected token %q in expression", tok.Value)
		p.advance()
		return &ast.StringLiteral{Value: ""}
	}
}

func looksLikeRegexFlags(s string) bool {
	for _, c := range s {
		if c != 'i' && c != 'x' && c != 's' && c != 'm' {
			return false
		}
	}
	return len(s) > 0
}

func parseNumberLiteral(tok Token) ast.Expression {
	raw := tok.Value
	numPart := raw
	for i, c := range raw {
		if !(c >= '0' && c <= '9' || c == '.') {
			numPart = raw[:i]
			break
		}
	}
	f, _ := strconv.ParseFloat(numPart, 64)
	return &ast.NumberLiteral{Value: f, IsFloat: strings.Contains(numPart, "."), Raw: raw}
}

// parseIdentOrCall disambiguates a dotted identifier ("req.http.Host"),
// a regex/ACL match right-hand side written as a bare table name, and a
// function call ("std.tolower(...)", "table.lookup(t, k)").
func (p *Parser) parseIdentOrCall() ast.Expression {
	start := p.advance()
	name := start.Value
	for p.at(DOT) {
		// Lookahead: "ident '.' ident '('" still might be a call
		// (table.lookup); we fold dots into the name greedily and only
		// stop if we hit '(' immediately after.
		save := p.pos
		p.advance()
		if !p.at(IDENT) {
			p.pos = save
			break
		}
		part := p.advance().Value
		name += "." + part
		if p.at(LPAREN) {
			break
		}
	}
	if p.at(LPAREN) {
		p.advance()
		var args []ast.Expression
		for !p.at(RPAREN) && !p.at(EOF) {
			args = append(args, p.parseExpression())
			if p.at(COMMA) {
				p.advance()
			}
		}
		p.expect(RPAREN)
		return &ast.FunctionCall{Name: name, Args: args}
	}
	return &ast.Identifier{Name: name}
}
