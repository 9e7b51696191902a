package handler

// stdlibFunctions lists the function names offered under each §6.2 module
// prefix, for completion and for hover's "is this a known call" check. It
// is kept apart from internal/stdlib's dispatch tables and does not match
// them: some listed names (uuid.version7, accept.media_lookup,
// setcookie.get_value_by_name, bin.data_convert, ...) have no
// implementation there and dispatch to Null, and some implemented names
// (std.replace, bin.hex_to_bin, accept.media_type_lookup, ...) are not
// listed.
var stdlibFunctions = map[string][]string{
	"std": {
		"tolower", "toupper", "strlen", "strstr", "replaceall", "replace_prefix", "replace_suffix",
		"prefixof", "suffixof", "collect", "atoi", "atof", "integer2time", "time2integer",
		"str2ip", "ip2str", "log", "syslog", "set_error_maxstale", "healthy", "port",
	},
	"digest": {
		"hash_md5", "hash_sha1", "hash_sha256", "hash_sha512", "hash_xxh32", "hash_xxh64",
		"hash_crc32", "hash_crc32b", "hmac_md5", "hmac_sha1", "hmac_sha256", "hmac_sha512",
		"hmac_md5_base64", "hmac_sha1_base64", "hmac_sha256_base64", "hmac_sha512_base64",
		"base64", "base64_decode", "base64url", "base64url_decode", "base64url_nopad",
		"base64url_nopad_decode", "secure_is_equal", "awsv4_hmac",
	},
	"math": {
		"sin", "cos", "tan", "asin", "acos", "atan", "atan2", "exp", "log", "log2", "log10",
		"sqrt", "pow", "round", "roundeven", "roundhalfdown", "roundhalfup", "trunc", "fmod",
		"is_nan", "is_finite", "is_infinite", "is_normal", "is_subnormal",
	},
	"table": {
		"lookup", "lookup_bool", "lookup_integer", "lookup_float", "lookup_ip", "lookup_rtime",
		"lookup_acl", "lookup_backend", "lookup_regex", "contains",
	},
	"header": {"get", "set", "unset", "filter", "filter_except"},
	"time":   {"now", "add", "sub", "is_after", "hex_to_time", "units", "runits", "interval_elapsed_ratio"},
	"querystring": {
		"get", "set", "add", "remove", "clean", "filter", "filter_except", "filtersep",
		"sort", "globfilter", "globfilter_except", "regfilter", "regfilter_except",
	},
	"uuid":      {"version3", "version4", "version5", "version7", "dns", "url", "oid", "x500", "is_valid", "is_version3", "is_version4", "is_version5", "is_version7", "encode", "decode"},
	"addr":      {"is_ipv4", "is_ipv6", "is_unix", "extract_bits"},
	"accept":    {"language_lookup", "language_filter_basic", "charset_lookup", "encoding_lookup", "media_lookup"},
	"bin":       {"base64_to_hex", "hex_to_base64", "data_convert"},
	"ratelimit": {"open_window", "ratecounter_increment", "check_rates", "penaltybox_add", "penaltybox_has"},
	"setcookie": {"get_value_by_name", "delete_by_name"},
	"fastly":    {"hash", "try_select_shield"},
}
