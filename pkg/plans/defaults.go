package plans

// Built-in catalog values.
const (
	DefaultVersion = "builtin"
	DefaultPlanID  = "growth"
)

// DefaultPlans returns the built-in pricing tiers in display order.
func DefaultPlans() []Plan {
	return []Plan{
		{
			ID:                   "free",
			Name:                 "Free",
			IncludedInteractions: 0,
			OverageRate:          0.12,
			BaseFee:              0,
			MaxVolume:            250,
		},
		{
			ID:                   "growth",
			Name:                 "Growth",
			IncludedInteractions: 350,
			OverageRate:          0.10,
			BaseFee:              10,
		},
		{
			ID:                   "scale",
			Name:                 "Scale",
			IncludedInteractions: 2000,
			OverageRate:          0.08,
			BaseFee:              99,
		},
		{
			ID:                   "concierge",
			Name:                 "Concierge",
			IncludedInteractions: 1500,
			OverageRate:          0.50,
			BaseFee:              499,
			HasHumanBackup:       true,
		},
	}
}

// DefaultCatalog returns the built-in catalog. It panics only if the
// built-in values are invalid, which the package tests rule out.
func DefaultCatalog() *Catalog {
	c, err := NewCatalog(DefaultVersion, DefaultPlanID, DefaultPlans())
	if err != nil {
		panic("plans: invalid built-in catalog: " + err.Error())
	}
	return c
}
