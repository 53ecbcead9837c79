// Package packages holds the static quota package catalog. It is
// read-only configuration, not persisted state.
package packages

type Package struct {
	ID        string
	Name      string
	Quota     int64
	Price     float64
	Unlimited bool
}

// UnlimitedQuota is the sentinel credit applied for unlimited packages.
// The user balance stays a plain integer, so "unlimited" is a very large
// allowance rather than true infinite semantics.
const UnlimitedQuota int64 = 1_000_000

var catalog = map[string]Package{
	"basic":        {ID: "basic", Name: "基础套餐", Quota: 600, Price: 99},
	"standard":     {ID: "standard", Name: "标准套餐", Quota: 1300, Price: 199},
	"professional": {ID: "professional", Name: "专业套餐", Quota: 2300, Price: 299},
	"flagship":     {ID: "flagship", Name: "旗舰套餐", Quota: 5500, Price: 599},
	"yearly":       {ID: "yearly", Name: "年费套餐", Quota: 0, Price: 1688, Unlimited: true},
}

func Lookup(id string) (Package, bool) {
	p, ok := catalog[id]
	return p, ok
}

// QuotaCredit is the number of quota units a paid order for this
// package adds to the buyer's balance.
func (p Package) QuotaCredit() int64 {
	if p.Unlimited {
		return UnlimitedQuota
	}
	return p.Quota
}
