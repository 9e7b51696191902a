package interp

import (
	"math"
	"path"
	"strconv"
	"strings"
	"time"

	"vclcore/internal/director"
	"vclcore/internal/runtime"
	"vclcore/internal/value"
)

// ResolveIdentifier is a pure function of dotted-name → value computed
// against ctx (§4.3). Unknown identifiers never fail: they resolve to an
// empty string, matching §7's "Unknown identifier ... return silent
// defaults".
func ResolveIdentifier(ctx *runtime.Context, name string) value.Value {
	if b, ok := ctx.Backends[name]; ok {
		return value.Backend(b.Name)
	}
	if d, ok := ctx.Directors[name]; ok {
		if picked, ok := director.Pick(d, ctx.Backends, ctx.ClientIP); ok {
			return value.Backend(picked)
		}
		return value.Backend("")
	}

	parts := strings.Split(name, ".")
	if len(parts) == 0 {
		return value.String("")
	}
	ns := parts[0]

	switch ns {
	case "re":
		if len(parts) == 3 && parts[1] == "group" {
			n, err := strconv.Atoi(parts[2])
			if err == nil {
				return value.String(ctx.ReGroups[n])
			}
		}
		return value.String("")

	case "var":
		return localValue(ctx, strings.Join(parts[1:], "."))

	case "req", "bereq", "beresp", "resp", "obj":
		return resolveMessagePath(ctx, ns, parts[1:])

	case "client":
		return resolveClient(ctx, parts[1:])

	case "server":
		return resolveServer(ctx, parts[1:])

	case "now":
		if len(parts) == 2 && parts[1] == "sec" {
			return value.Integer(time.Now().Unix())
		}
		return value.Integer(time.Now().UnixMilli())

	case "math":
		if len(parts) == 2 {
			if v, ok := mathConstant(parts[1]); ok {
				return v
			}
		}
		return value.String("")

	case "fastly", "fastly_info", "time", "tls", "waf", "workspace":
		if v, ok := ctx.Overrides[name]; ok {
			return v
		}
		if v, ok := defaultOverride(name); ok {
			return v
		}
		return value.String("")
	}

	// Bare local name fallback (§4.3: "var.<name> or bare local name").
	if v, ok := ctx.Locals[name]; ok {
		return v
	}
	return value.String("")
}

func localValue(ctx *runtime.Context, name string) value.Value {
	if v, ok := ctx.Locals[name]; ok {
		return v
	}
	return value.String("")
}

// resolveMessagePath resolves req/bereq/beresp/resp/obj dotted paths.
func resolveMessagePath(ctx *runtime.Context, ns string, rest []string) value.Value {
	msg := ctx.Message(ns)
	if msg == nil || len(rest) == 0 {
		return value.String("")
	}
	if rest[0] == "http" {
		name := strings.Join(rest[1:], ".")
		return value.String(msg.Http.Get(name))
	}
	prop := strings.Join(rest, ".")

	// url.{path,qs,basename,dirname,ext} subfields for req.url / bereq.url.
	if rest[0] == "url" && len(rest) > 1 {
		raw := msg.Get("url").AsString()
		return urlSubfield(raw, rest[1])
	}

	if v, ok := msg.Fields[prop]; ok {
		return v
	}
	if v, ok := messageDefault(ns, prop); ok {
		return v
	}
	return value.String("")
}

func urlSubfield(raw, field string) value.Value {
	u := raw
	qs := ""
	if i := strings.IndexByte(u, '?'); i >= 0 {
		qs = u[i+1:]
		u = u[:i]
	}
	switch field {
	case "path":
		return value.String(u)
	case "qs":
		return value.String(qs)
	case "basename":
		return value.String(path.Base(u))
	case "dirname":
		return value.String(path.Dir(u))
	case "ext":
		ext := path.Ext(u)
		return value.String(strings.TrimPrefix(ext, "."))
	default:
		return value.String("")
	}
}

// messageDefault supplies the zero-ish defaults for well-known scalar
// fields that haven't been explicitly set on this Context yet.
func messageDefault(ns, prop string) (value.Value, bool) {
	switch prop {
	case "method":
		return value.String("GET"), true
	case "proto":
		return value.String("HTTP/1.1"), true
	case "restarts":
		if ns == "req" {
			return value.Integer(0), true
		}
	case "status":
		if ns == "beresp" || ns == "resp" || ns == "obj" {
			return value.Integer(200), true
		}
	case "is_ssl", "is_purge", "is_ipv6", "esi", "hash_always_miss", "hash_ignore_busy",
		"cacheable", "do_stream", "do_esi", "gzip", "brotli", "saintmode", "stale_if_error":
		return value.Bool(false), true
	case "esi_level", "ttl", "grace", "stale_while_revalidate", "hits",
		"max_stale_if_error", "max_stale_while_revalidate",
		"connect_timeout", "first_byte_timeout", "between_bytes_timeout":
		return value.Integer(0), true
	case "hash", "digest", "xid", "topurl", "url", "backend", "response", "identity":
		return value.String(""), true
	}
	return value.Value{}, false
}

func resolveClient(ctx *runtime.Context, rest []string) value.Value {
	if len(rest) == 0 {
		return value.String("")
	}
	dotted := "client." + strings.Join(rest, ".")
	if v, ok := ctx.Overrides[dotted]; ok {
		return v
	}
	switch rest[0] {
	case "ip":
		if ctx.ClientIP != "" {
			return value.IP(ctx.ClientIP)
		}
		return value.IP("0.0.0.0")
	}
	if v, ok := defaultOverride(dotted); ok {
		return v
	}
	return value.String("")
}

func resolveServer(ctx *runtime.Context, rest []string) value.Value {
	dotted := "server." + strings.Join(rest, ".")
	if v, ok := ctx.Overrides[dotted]; ok {
		return v
	}
	if v, ok := defaultOverride(dotted); ok {
		return v
	}
	return value.String("")
}

// defaultOverride is the static match table of documented defaults for
// read-only derived surfaces named throughout §4.3. Paths not present here
// (and not set via Context.Overrides) resolve to empty string.
func defaultOverride(path string) (value.Value, bool) {
	defaults := map[string]value.Value{
		"client.port":                 value.Integer(0),
		"client.identity":             value.String(""),
		"client.requests":             value.Integer(1),
		"client.geo.country_code":     value.String("US"),
		"client.geo.continent_code":   value.String("NA"),
		"client.geo.latitude":         value.Float(37.7749),
		"client.geo.longitude":        value.Float(-122.4194),
		"client.geo.city":             value.String(""),
		"client.geo.region":           value.String(""),
		"client.as.number":            value.Integer(0),
		"client.as.name":              value.String(""),
		"client.browser.name":         value.String(""),
		"client.browser.version":      value.String(""),
		"client.os.name":              value.String(""),
		"client.os.version":           value.String(""),
		"client.class.bot":            value.Bool(false),
		"client.platform.hwtype":      value.String(""),
		"client.display.touchscreen":  value.Bool(false),
		"client.socket.congestion_algorithm": value.String("cubic"),

		"server.hostname":      value.String("localhost"),
		"server.identity":      value.String("cache-local"),
		"server.datacenter":    value.String("LOCAL"),
		"server.region":        value.String("local"),
		"server.pop":           value.String("LOCAL"),
		"server.billing_region": value.String("US"),
		"server.ip":            value.IP("127.0.0.1"),
		"server.port":          value.Integer(80),

		"fastly.ff.visits_this_service": value.Integer(0),
		"fastly_info.state":             value.String(""),
		"fastly_info.is_cluster_edge":   value.Bool(false),

		"time.elapsed.sec": value.Integer(0),
		"time.to_first_byte.sec": value.Integer(0),

		"tls.client.protocol":     value.String(""),
		"tls.client.cipher":       value.String(""),
		"tls.client.certificate":  value.String(""),

		"waf.executed":  value.Bool(false),
		"waf.blocked":   value.Bool(false),
		"waf.logged":    value.Bool(false),
		"waf.failures":  value.Integer(0),

		"workspace.bytes_free":  value.Integer(65536),
		"workspace.bytes_total": value.Integer(65536),
	}
	v, ok := defaults[path]
	return v, ok
}

func mathConstant(name string) (value.Value, bool) {
	switch name {
	case "PI":
		return value.Float(math.Pi), true
	case "E":
		return value.Float(math.E), true
	case "TAU":
		return value.Float(2 * math.Pi), true
	case "PHI":
		return value.Float(1.6180339887498948482045868343656381177203091798057628621354486227), true
	case "LN2":
		return value.Float(math.Ln2), true
	case "LN10":
		return value.Float(math.Log(10)), true
	case "LOG2E":
		return value.Float(1 / math.Ln2), true
	case "LOG10E":
		return value.Float(1 / math.Log(10)), true
	case "SQRT2":
		return value.Float(math.Sqrt2), true
	case "SQRT1_2":
		return value.Float(math.Sqrt(0.5)), true
	case "POS_INFINITY":
		return value.Float(math.Inf(1)), true
	case "NEG_INFINITY":
		return value.Float(math.Inf(-1)), true
	case "NAN":
		return value.Float(math.NaN()), true
	case "FLOAT_MAX":
		return value.Float(math.MaxFloat64), true
	case "FLOAT_MIN":
		return value.Float(math.SmallestNonzeroFloat64), true
	case "FLOAT_EPSILON":
		return value.Float(2.220446049250313e-16), true
	case "INTEGER_MAX":
		return value.Integer(math.MaxInt64), true
	case "INTEGER_MIN":
		return value.Integer(math.MinInt64), true
	default:
		return value.Value{}, false
	}
}
