package acl

import "testing"

func TestMatchExactEntryNoPrefix(t *testing.T) {
	r := NewRegistry()
	r.Add("internal")
	r.AddEntry("internal", "192.168.1.1", nil, false)

	if !r.Get("internal").Match("192.168.1.1") {
		t.Error("expected exact-match entry to match its own address")
	}
	if r.Get("internal").Match("192.168.1.2") {
		t.Error("expected exact-match entry not to match a different address")
	}
}

func TestMatchPrefixEntry(t *testing.T) {
	r := NewRegistry()
	prefix := 24
	r.Add("lan")
	r.AddEntry("lan", "10.0.0.0", &prefix, false)

	if !r.Get("lan").Match("10.0.0.42") {
		t.Error("expected 10.0.0.42 to fall within 10.0.0.0/24")
	}
	if r.Get("lan").Match("10.0.1.42") {
		t.Error("expected 10.0.1.42 to fall outside 10.0.0.0/24")
	}
}

func TestMatchNegatedEntryExcludes(t *testing.T) {
	r := NewRegistry()
	prefix16 := 16
	prefix32 := 32
	r.Add("mixed")
	r.AddEntry("mixed", "10.0.0.0", &prefix16, false)
	r.AddEntry("mixed", "10.0.5.5", &prefix32, true)

	if r.Get("mixed").Match("10.0.5.5") {
		t.Error("negated entry should exclude its address even though a broader positive entry matches")
	}
	if !r.Get("mixed").Match("10.0.5.6") {
		t.Error("a sibling address not covered by the negated entry should still match")
	}
}

func TestMatchFamilyMismatchIsFalse(t *testing.T) {
	r := NewRegistry()
	r.Add("v4only")
	r.AddEntry("v4only", "10.0.0.0", nil, false)

	if r.Get("v4only").Match("::1") {
		t.Error("an IPv6 query against a v4 entry must never match")
	}
}

func TestAddEntryMalformedIPRecordsDiagnosticAndNeverMatches(t *testing.T) {
	r := NewRegistry()
	r.Add("bad")
	r.AddEntry("bad", "999.999.999.999", nil, false)

	if len(r.Diagnostics) == 0 {
		t.Fatal("expected a diagnostic for the malformed address")
	}
	if r.Get("bad").Match("999.999.999.999") {
		t.Error("a malformed entry must never match, even its own literal text")
	}
}

func TestAddEntryInvalidPrefixLengthRecordsDiagnostic(t *testing.T) {
	r := NewRegistry()
	bogus := 200
	r.Add("bad-prefix")
	r.AddEntry("bad-prefix", "10.0.0.0", &bogus, false)

	if len(r.Diagnostics) == 0 {
		t.Fatal("expected a diagnostic for the out-of-range IPv4 prefix length")
	}
}

func TestHasDistinguishesRegisteredFromUnregistered(t *testing.T) {
	r := NewRegistry()
	r.Add("known")
	if !r.Has("known") {
		t.Error("expected Has to report true for a registered ACL")
	}
	if r.Has("unknown") {
		t.Error("expected Has to report false for a name never Add-ed")
	}
}

func TestIPv6PrefixMatch(t *testing.T) {
	r := NewRegistry()
	prefix := 64
	r.Add("v6")
	r.AddEntry("v6", "2001:db8::", &prefix, false)

	if !r.Get("v6").Match("2001:db8::1") {
		t.Error("expected 2001:db8::1 to fall within 2001:db8::/64")
	}
	if r.Get("v6").Match("2001:db9::1") {
		t.Error("expected 2001:db9::1 to fall outside 2001:db8::/64")
	}
}

func TestIPv4MappedIPv6ParsesAsV6(t *testing.T) {
	addr, err := ParseAddr("::ffff:1.2.3.4")
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if addr.Family != FamilyV6 {
		t.Errorf("expected an IPv4-mapped literal to parse as FamilyV6, got %v", addr.Family)
	}
}

func TestParseAddrRejectsGarbage(t *testing.T) {
	if _, err := ParseAddr("not-an-address"); err == nil {
		t.Error("expected an error for an unparseable address")
	}
	if _, err := ParseAddr(""); err == nil {
		t.Error("expected an error for an empty address")
	}
}
