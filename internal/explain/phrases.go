package explain

import "strings"

// phrases maps model feature names to the noun phrase used in reason text.
// Unknown features fall back to underscores-to-spaces.
var phrases = map[string]string{
	"Orders_CY":       "order count (current year)",
	"Orders_PY":       "order count (prior year)",
	"Orders_Lifetime": "lifetime order count",
	"Spend_CY":        "spend (current year)",
	"Spend_PY":        "spend (prior year)",
	"Spend_Lifetime":  "lifetime spend",
	"Units_CY":        "units purchased (current year)",
	"Units_PY":        "units purchased (prior year)",
	"Units_Lifetime":  "lifetime units",
	"AOV_CY":          "average order value",
	"DaysSinceLast":   "days since last order",
	"TenureDays":      "customer tenure (days)",

	"Uniforms_Units_CY":        "uniforms units (current year)",
	"Uniforms_Spend_CY":        "uniforms spend (current year)",
	"Uniforms_Orders_CY":       "uniforms orders (current year)",
	"Uniforms_Pct_of_Total_CY": "uniforms % of total spend",
	"Uniforms_DaysSinceLast":   "days since last uniforms order",

	"Sparring_Units_CY":        "sparring units (current year)",
	"Sparring_Spend_CY":        "sparring spend (current year)",
	"Sparring_Orders_CY":       "sparring orders (current year)",
	"Sparring_Pct_of_Total_CY": "sparring % of total spend",
	"Sparring_DaysSinceLast":   "days since last sparring order",

	"Belts_Units_CY":        "belts units (current year)",
	"Belts_Spend_CY":        "belts spend (current year)",
	"Belts_Orders_CY":       "belts orders (current year)",
	"Belts_Pct_of_Total_CY": "belts % of total spend",
	"Belts_DaysSinceLast":   "days since last belts order",

	"Bags_Units_CY":        "bags units (current year)",
	"Bags_Spend_CY":        "bags spend (current year)",
	"Bags_Orders_CY":       "bags orders (current year)",
	"Bags_Pct_of_Total_CY": "bags % of total spend",
	"Bags_DaysSinceLast":   "days since last bags order",

	"Customs_Units_CY":        "customs units (current year)",
	"Customs_Spend_CY":        "customs spend (current year)",
	"Customs_Orders_CY":       "customs orders (current year)",
	"Customs_Pct_of_Total_CY": "customs % of total spend",
	"Customs_DaysSinceLast":   "days since last customs order",

	"CUBS_Categories_Active_CY": "product categories active (current year)",
	"CUBS_Categories_Active_PY": "product categories active (prior year)",
	"CUBS_Categories_Ever":      "product categories ever purchased",
}

// Features where a high value lowers churn risk.
var highIsProtective = stringSet(
	"Orders_CY", "Orders_PY", "Orders_Lifetime",
	"Spend_CY", "Spend_PY", "Spend_Lifetime",
	"Units_CY", "Units_PY", "Units_Lifetime",
	"AOV_CY", "TenureDays",
	"Uniforms_Units_CY", "Uniforms_Spend_CY", "Uniforms_Orders_CY",
	"Sparring_Units_CY", "Sparring_Spend_CY", "Sparring_Orders_CY",
	"Belts_Units_CY", "Belts_Spend_CY", "Belts_Orders_CY",
	"Bags_Units_CY", "Bags_Spend_CY", "Bags_Orders_CY",
	"Customs_Units_CY", "Customs_Spend_CY", "Customs_Orders_CY",
	"CUBS_Categories_Active_CY", "CUBS_Categories_Active_PY",
	"CUBS_Categories_Ever",
)

// Features where a high value raises churn risk.
var highIsRisky = stringSet(
	"DaysSinceLast",
	"Uniforms_DaysSinceLast", "Sparring_DaysSinceLast",
	"Belts_DaysSinceLast", "Bags_DaysSinceLast", "Customs_DaysSinceLast",
)

func stringSet(items ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, s := range items {
		set[s] = struct{}{}
	}
	return set
}

// featurePhrase returns the base phrase for a feature, without polarity.
func featurePhrase(name string) string {
	if v, ok := strings.CutPrefix(name, "Segment_"); ok {
		return "Customer segment is " + v
	}
	if v, ok := strings.CutPrefix(name, "CostCenter_"); ok {
		return "Cost center is " + v
	}
	if p, ok := phrases[name]; ok {
		return p
	}
	return strings.ReplaceAll(name, "_", " ")
}
