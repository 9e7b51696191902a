// Package runtime implements the per-request mutable state described in
// §3.6: the req/bereq/beresp/resp/obj objects, locals, regex capture
// groups, the ACL/table/backend/director registries, the restart counter
// and the hash-data accumulator.
//
// Context is created once per request by NewContext and is never safe to
// share across concurrent requests (§5): every field is request-owned.
// The compiled subroutine map and Program AST, by contrast, are immutable
// after compilation and may be shared freely.
package runtime

import (
	"vclcore/internal/acl"
	"vclcore/internal/value"
)

// MaxRestarts bounds req.restarts (§3.6 invariants, §9).
const MaxRestarts = 4

// Message models one of req/bereq/beresp/resp/obj: a header map plus a bag
// of typed scalar fields (url, method, status, ttl, ...). Using a field bag
// instead of one named struct field per spec-listed property keeps the
// dotted-path resolution table in internal/interp exhaustive and explicit
// without an unwieldy struct (§9 "a static match table is exhaustive").
type Message struct {
	Http   *HeaderMap
	Fields map[string]value.Value
}

func NewMessage() *Message {
	return &Message{Http: NewHeaderMap(), Fields: make(map[string]value.Value)}
}

func (m *Message) Get(name string) value.Value {
	if v, ok := m.Fields[name]; ok {
		return v
	}
	return value.String("")
}

func (m *Message) Set(name string, v value.Value) {
	m.Fields[name] = v
}

// Context is the full per-request state.
type Context struct {
	Req    *Message
	Bereq  *Message
	Beresp *Message
	Resp   *Message
	Obj    *Message

	Locals map[string]value.Value

	// ReGroups holds the most recent regex match's capture groups, refreshed
	// on every match attempt (successful or failing) scoped to the current
	// subroutine invocation (§3.6 invariants).
	ReGroups map[int]string

	ACLs         *acl.Registry
	Tables       map[string]*Table
	Backends     map[string]*Backend
	Directors    map[string]*Director
	Penaltyboxes map[string]*Penaltybox
	Ratecounters map[string]*Ratecounter

	CurrentBackend string

	Restarts int

	// HashData accumulates hex digests contributed by hash_data during
	// vcl_hash (§3.6, GLOSSARY "Hash data").
	HashData []string

	// Cache is opaque to the core (§3.6): it exists so standard-library
	// modules can model a cache without the interpreter knowing its shape.
	Cache map[string]any

	ClientIP string

	// Overrides let a test fixture or driver seed read-only derived
	// surfaces (client.geo.*, server.*, fastly.*, tls.*, waf.*, ...)
	// without the interpreter needing a named field per property. Keys are
	// full dotted paths, e.g. "client.geo.country_code".
	Overrides map[string]value.Value

	// Custom holds compiled closures for user-defined subroutines, keyed by
	// name, so a CallStatement can invoke another subroutine without the
	// interpreter package needing a cyclic import back into itself through
	// runtime. Populated once by the subroutine compiler.
	Custom map[string]func(*Context) SubResult

	// ParamNames records each custom subroutine's declared parameter names
	// in order, so a call site can bind its argument expressions into
	// Locals before invoking the callee.
	ParamNames map[string][]string

	// gotoHops counts goto-sentinel jumps within the current subroutine
	// invocation; an implementer-chosen hardening bound against adversarial
	// jump cycles (§5: "an implementer MAY impose a hop limit").
	gotoHops int
}

// MaxGotoHops bounds intra-subroutine goto chains (§5 hardening note).
const MaxGotoHops = 10000

// SubResult is what a compiled subroutine closure returns: either a
// terminating canonical Action (state-machine subroutines) or a Value
// (functional subroutines declared with a return type), never both.
type SubResult struct {
	Action string
	Value  value.Value
}

func NewContext() *Context {
	return &Context{
		Req:          NewMessage(),
		Bereq:        NewMessage(),
		Beresp:       NewMessage(),
		Resp:         NewMessage(),
		Obj:          NewMessage(),
		Locals:       make(map[string]value.Value),
		ReGroups:     make(map[int]string),
		ACLs:         acl.NewRegistry(),
		Tables:       make(map[string]*Table),
		Backends:     make(map[string]*Backend),
		Directors:    make(map[string]*Director),
		Penaltyboxes: make(map[string]*Penaltybox),
		Ratecounters: make(map[string]*Ratecounter),
		Cache:        make(map[string]any),
		Overrides:    make(map[string]value.Value),
		Custom:       make(map[string]func(*Context) SubResult),
		ParamNames:   make(map[string][]string),
	}
}

// ResetGroups clears per-invocation state that must not leak between
// subroutine calls within the same request's restart loop: capture groups
// are scoped to "the current subroutine invocation" (§3.6), so the driver
// resets them before each top-level entry.
func (c *Context) ResetGroups() {
	c.ReGroups = make(map[int]string)
	c.gotoHops = 0
}

// BumpGotoHop counts one goto-sentinel jump within the current subroutine
// invocation, reporting false once MaxGotoHops is exceeded (§5 hardening
// note against adversarial jump cycles).
func (c *Context) BumpGotoHop() bool {
	c.gotoHops++
	return c.gotoHops <= MaxGotoHops
}

// message returns the Message for a namespace name, or nil if ns isn't one
// of req/bereq/beresp/resp/obj.
func (c *Context) Message(ns string) *Message {
	switch ns {
	case "req":
		return c.Req
	case "bereq":
		return c.Bereq
	case "beresp":
		return c.Beresp
	case "resp":
		return c.Resp
	case "obj":
		return c.Obj
	default:
		return nil
	}
}
