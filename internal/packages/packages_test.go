package packages

import "testing"

func TestLookup(t *testing.T) {
	p, ok := Lookup("standard")
	if !ok {
		t.Fatal("standard package missing")
	}
	if p.Quota != 1300 || p.Price != 199 {
		t.Errorf("standard = %+v", p)
	}
	if _, ok := Lookup("nope"); ok {
		t.Error("unknown package id must not resolve")
	}
}

func TestQuotaCredit(t *testing.T) {
	p, _ := Lookup("flagship")
	if p.QuotaCredit() != 5500 {
		t.Errorf("flagship credit = %d", p.QuotaCredit())
	}
	y, _ := Lookup("yearly")
	if !y.Unlimited || y.QuotaCredit() != UnlimitedQuota {
		t.Errorf("yearly credit = %d", y.QuotaCredit())
	}
}
