// addrlib.go implements addr.* (§6.2), layered on internal/acl's binary
// CIDR representation so IPv4-mapped-IPv6 family mismatches are rejected
// the same way ACL matching rejects them.
package stdlib

import (
	"net"

	"vclcore/internal/acl"
	"vclcore/internal/runtime"
	"vclcore/internal/value"
)

var addrFuncs = map[string]fn{
	"is_ipv4": func(ctx *runtime.Context, a []value.Value) value.Value {
		addr, err := acl.ParseAddr(argStr(a, 0))
		return value.Bool(err == nil && addr.Family == acl.FamilyV4)
	},
	"is_ipv6": func(ctx *runtime.Context, a []value.Value) value.Value {
		addr, err := acl.ParseAddr(argStr(a, 0))
		return value.Bool(err == nil && addr.Family == acl.FamilyV6)
	},
	"is_unix": func(ctx *runtime.Context, a []value.Value) value.Value {
		return value.Bool(false)
	},
	"extract_bits": func(ctx *runtime.Context, a []value.Value) value.Value {
		addr, err := acl.ParseAddr(argStr(a, 0))
		if err != nil {
			return value.String("")
		}
		from, to := int(argInt(a, 1)), int(argInt(a, 2))
		if from < 0 || to > len(addr.Bits) || from >= to {
			return value.String("")
		}
		return value.String(addr.Bits[from:to])
	},
	"lookups": func(ctx *runtime.Context, a []value.Value) value.Value {
		ips, err := net.LookupIP(argStr(a, 0))
		if err != nil || len(ips) == 0 {
			return value.String("")
		}
		return value.IP(ips[0].String())
	},
}
