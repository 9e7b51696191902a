package syntax

import (
	"strconv"
	"strings"

	"vclcore/internal/ast"
)

// parseACL parses "acl NAME { "1.2.3.0"/24; !"10.0.0.1"; ... }" (§3.1, §6.1).
func (p *Parser) parseACL() *ast.ACLDecl {
	start := p.advance() // 'acl'
	name := p.expect(IDENT).Value
	decl := &ast.ACLDecl{Name: name, Pos: pos(start)}
	p.expect(LBRACE)
	for !p.at(RBRACE) && !p.at(EOF) {
		var e ast.ACLEntry
		if p.at(NOT) {
			p.advance()
			e.Negated = true
		}
		e.IP = p.expect(STRING).Value
		if p.at(SLASH) {
			p.advance()
			n, _ := strconv.Atoi(p.expect(NUMBER).Value)
			e.Prefix = &n
		}
		decl.Entries = append(decl.Entries, e)
		p.expect(SEMI)
	}
	p.expect(RBRACE)
	return decl
}

// parseBackend parses "backend NAME { .host = "..."; .port = "80"; ... }"
// (§3.2, §6.3), including an optional nested ".probe = { ... }" block.
func (p *Parser) parseBackend() *ast.BackendDecl {
	start := p.advance() // 'backend'
	name := p.expect(IDENT).Value
	decl := &ast.BackendDecl{Name: name, Pos: pos(start), Port: "80"}
	p.expect(LBRACE)
	for !p.at(RBRACE) && !p.at(EOF) {
		p.expect(DOT)
		field := p.expect(IDENT).Value
		p.expect(ASSIGN)
		switch field {
		case "probe":
			decl.Probe = p.parseProbe()
		default:
			val := p.parseExpression()
			p.expect(SEMI)
			applyBackendField(decl, field, val)
		}
	}
	p.expect(RBRACE)
	return decl
}

func applyBackendField(decl *ast.BackendDecl, field string, val ast.Expression) {
	s := exprAsString(val)
	switch field {
	case "host":
		decl.Host = s
	case "port":
		decl.Port = s
	case "ssl":
		decl.SSL = s == "true"
	case "connect_timeout":
		decl.ConnectTimeout = exprAsSeconds(val)
	case "first_byte_timeout":
		decl.FirstByteTimeout = exprAsSeconds(val)
	case "between_bytes_timeout":
		decl.BetweenBytesTimeout = exprAsSeconds(val)
	case "max_connections":
		decl.MaxConnections = int(exprAsFloat(val))
	}
}

func (p *Parser) parseProbe() *ast.ProbeDecl {
	probe := &ast.ProbeDecl{ExpectedStatus: 200, Interval: 5, Timeout: 2, Window: 5, Threshold: 3, Initial: 3}
	p.expect(LBRACE)
	for !p.at(RBRACE) && !p.at(EOF) {
		p.expect(DOT)
		field := p.expect(IDENT).Value
		p.expect(ASSIGN)
		val := p.parseExpression()
		p.expect(SEMI)
		switch field {
		case "url":
			probe.URL = exprAsString(val)
		case "expected_response":
			probe.ExpectedStatus = int(exprAsFloat(val))
		case "interval":
			probe.Interval = exprAsSeconds(val)
		case "timeout":
			probe.Timeout = exprAsSeconds(val)
		case "window":
			probe.Window = int(exprAsFloat(val))
		case "threshold":
			probe.Threshold = int(exprAsFloat(val))
		case "initial":
			probe.Initial = int(exprAsFloat(val))
		}
	}
	p.expect(RBRACE)
	return probe
}

// parseDirector parses "director NAME random|hash|client|fallback|chash {
// { .backend = b1; .weight = 1; } ... .quorum = "50%"; .retries = 5; }"
// (§3.2, §6.4).
func (p *Parser) parseDirector() *ast.DirectorDecl {
	start := p.advance() // 'director'
	name := p.expect(IDENT).Value
	typ := ast.DirectorType(p.expect(IDENT).Value)
	decl := &ast.DirectorDecl{Name: name, Type: typ, Pos: pos(start)}
	p.expect(LBRACE)
	for !p.at(RBRACE) && !p.at(EOF) {
		if p.at(LBRACE) {
			decl.Members = append(decl.Members, p.parseDirectorMember())
			continue
		}
		p.expect(DOT)
		field := p.expect(IDENT).Value
		p.expect(ASSIGN)
		val := p.parseExpression()
		p.expect(SEMI)
		switch field {
		case "quorum":
			if n, err := strconv.Atoi(strings.TrimSuffix(exprAsString(val), "%")); err == nil {
				decl.Quorum = n
			}
		case "retries":
			decl.Retries = int(exprAsFloat(val))
		}
	}
	p.expect(RBRACE)
	return decl
}

func (p *Parser) parseDirectorMember() ast.DirectorMember {
	var m ast.DirectorMember
	p.expect(LBRACE)
	for !p.at(RBRACE) && !p.at(EOF) {
		p.expect(DOT)
		field := p.expect(IDENT).Value
		p.expect(ASSIGN)
		val := p.parseExpression()
		p.expect(SEMI)
		switch field {
		case "backend":
			m.Backend = exprAsString(val)
		case "weight":
			m.Weight = int(exprAsFloat(val))
		}
	}
	p.expect(RBRACE)
	return m
}

// parseTable parses "table NAME { "key": "value", "k2": "v2" }" (§3.2, §6.2).
func (p *Parser) parseTable() *ast.TableDecl {
	start := p.advance() // 'table'
	name := p.expect(IDENT).Value
	decl := &ast.TableDecl{Name: name, Pos: pos(start)}
	if p.at(IDENT) {
		p.advance() // optional value-type annotation, e.g. "table NAME STRING {"
	}
	p.expect(LBRACE)
	for !p.at(RBRACE) && !p.at(EOF) {
		key := p.expect(STRING).Value
		p.expect(COLON)
		val := p.expect(STRING).Value
		decl.Entries = append(decl.Entries, ast.TableEntry{Key: key, Value: val})
		if p.at(COMMA) {
			p.advance()
		}
	}
	p.expect(RBRACE)
	return decl
}

func exprAsString(e ast.Expression) string {
	switch n := e.(type) {
	case *ast.StringLiteral:
		return n.Value
	case *ast.Identifier:
		return n.Name
	case *ast.NumberLiteral:
		return n.Raw
	default:
		return ""
	}
}

func exprAsFloat(e ast.Expression) float64 {
	if n, ok := e.(*ast.NumberLiteral); ok {
		return n.Value
	}
	return 0
}

// exprAsSeconds converts a duration literal like "5s"/"500ms" written as a
// backend/probe field value into whole seconds, truncating sub-second
// literals to 0 the way a duration-in-seconds config field would.
func exprAsSeconds(e ast.Expression) int {
	n, ok := e.(*ast.NumberLiteral)
	if !ok {
		return 0
	}
	raw := strings.TrimSpace(n.Raw)
	switch {
	case strings.HasSuffix(raw, "ms"):
		return int(n.Value) / 1000
	case strings.HasSuffix(raw, "s"):
		return int(n.Value)
	case strings.HasSuffix(raw, "m"):
		return int(n.Value) * 60
	case strings.HasSuffix(raw, "h"):
		return int(n.Value) * 3600
	default:
		return int(n.Value)
	}
}
