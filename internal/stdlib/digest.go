// digest.go groups the hashing/encoding functions (§6.2): std.* digests are
// named digest.* in this implementation, grouped with the other hashing
// primitives. xxh32/xxh64 are grounded on github.com/cespare/xxhash/v2,
// promoted from the teacher's indirect dependency set for exactly this
// purpose (see SPEC_FULL.md's DOMAIN STACK section).
package stdlib

import (
	"crypto/hmac"
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"hash"
	"hash/crc32"

	"github.com/cespare/xxhash/v2"

	"vclcore/internal/runtime"
	"vclcore/internal/value"
)

func hexDigest(b []byte) value.Value { return value.String(hex.EncodeToString(b)) }

var digestFuncs = map[string]fn{
	"hash_md5": func(ctx *runtime.Context, a []value.Value) value.Value {
		sum := md5.Sum([]byte(argStr(a, 0)))
		return hexDigest(sum[:])
	},
	"hash_sha1": func(ctx *runtime.Context, a []value.Value) value.Value {
		sum := sha1.Sum([]byte(argStr(a, 0)))
		return hexDigest(sum[:])
	},
	"hash_sha256": func(ctx *runtime.Context, a []value.Value) value.Value {
		sum := sha256.Sum256([]byte(argStr(a, 0)))
		return hexDigest(sum[:])
	},
	"hash_sha512": func(ctx *runtime.Context, a []value.Value) value.Value {
		sum := sha512.Sum512([]byte(argStr(a, 0)))
		return hexDigest(sum[:])
	},
	"hash_crc32": func(ctx *runtime.Context, a []value.Value) value.Value {
		return value.Integer(int64(crc32.ChecksumIEEE([]byte(argStr(a, 0)))))
	},
	"hash_crc32b": func(ctx *runtime.Context, a []value.Value) value.Value {
		tbl := crc32.MakeTable(crc32.Castagnoli)
		return value.Integer(int64(crc32.Checksum([]byte(argStr(a, 0)), tbl)))
	},
	"hash_xxh32": func(ctx *runtime.Context, a []value.Value) value.Value {
		return value.Integer(int64(uint32(xxhash.Sum64([]byte(argStr(a, 0))))))
	},
	"hash_xxh64": func(ctx *runtime.Context, a []value.Value) value.Value {
		return value.Integer(int64(xxhash.Sum64([]byte(argStr(a, 0)))))
	},
	"hmac_md5": func(ctx *runtime.Context, a []value.Value) value.Value {
		return hexDigest(hmacSum(md5.New, argStr(a, 0), argStr(a, 1)))
	},
	"hmac_sha1": func(ctx *runtime.Context, a []value.Value) value.Value {
		return hexDigest(hmacSum(sha1.New, argStr(a, 0), argStr(a, 1)))
	},
	"hmac_sha256": func(ctx *runtime.Context, a []value.Value) value.Value {
		return hexDigest(hmacSum(sha256.New, argStr(a, 0), argStr(a, 1)))
	},
	"hmac_sha512": func(ctx *runtime.Context, a []value.Value) value.Value {
		return hexDigest(hmacSum(sha512.New, argStr(a, 0), argStr(a, 1)))
	},
	"hmac_sha256_base64": func(ctx *runtime.Context, a []value.Value) value.Value {
		return value.String(base64.StdEncoding.EncodeToString(hmacSum(sha256.New, argStr(a, 0), argStr(a, 1))))
	},
	"base64": func(ctx *runtime.Context, a []value.Value) value.Value {
		return value.String(base64.StdEncoding.EncodeToString([]byte(argStr(a, 0))))
	},
	"base64_decode": func(ctx *runtime.Context, a []value.Value) value.Value {
		b, err := base64.StdEncoding.DecodeString(argStr(a, 0))
		if err != nil {
			return value.String("")
		}
		return value.String(string(b))
	},
	"base64url": func(ctx *runtime.Context, a []value.Value) value.Value {
		return value.String(base64.URLEncoding.EncodeToString([]byte(argStr(a, 0))))
	},
	"base64url_decode": func(ctx *runtime.Context, a []value.Value) value.Value {
		b, err := base64.URLEncoding.DecodeString(argStr(a, 0))
		if err != nil {
			return value.String("")
		}
		return value.String(string(b))
	},
	"base64url_nopad": func(ctx *runtime.Context, a []value.Value) value.Value {
		return value.String(base64.RawURLEncoding.EncodeToString([]byte(argStr(a, 0))))
	},
	"base64url_nopad_decode": func(ctx *runtime.Context, a []value.Value) value.Value {
		b, err := base64.RawURLEncoding.DecodeString(argStr(a, 0))
		if err != nil {
			return value.String("")
		}
		return value.String(string(b))
	},
	"secure_is_equal": func(ctx *runtime.Context, a []value.Value) value.Value {
		return value.Bool(subtle.ConstantTimeCompare([]byte(argStr(a, 0)), []byte(argStr(a, 1))) == 1)
	},
}

func hmacSum(newHash func() hash.Hash, key, data string) []byte {
	mac := hmac.New(newHash, []byte(key))
	mac.Write([]byte(data))
	return mac.Sum(nil)
}
