package demographics

import (
	"fmt"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/sells-group/bizmapper/internal/model"
)

// Insight categories.
const (
	InsightIncome   = "income"
	InsightDwelling = "dwelling"
	InsightAge      = "age"
	InsightDensity  = "density"
)

// DisplayName title-cases a canonical area name ("ANG MO KIO" -> "Ang Mo Kio").
// A Caser carries state, so each call builds its own.
func DisplayName(area string) string {
	return cases.Title(language.English).String(Normalize(area))
}

// DensityTierFor maps people per km² to a label and map colour.
func DensityTierFor(density int) model.DensityTier {
	switch {
	case density >= 15000:
		return model.DensityTier{Label: "Very High", Colour: "#d53e4f"}
	case density >= 8000:
		return model.DensityTier{Label: "High", Colour: "#fc8d59"}
	case density >= 3000:
		return model.DensityTier{Label: "Moderate", Colour: "#fee08b"}
	case density >= 500:
		return model.DensityTier{Label: "Low", Colour: "#99d594"}
	default:
		return model.DensityTier{Label: "Very Low", Colour: "#3288bd"}
	}
}

// Insights derives business-siting tips, one per category at most, in the
// order income, dwelling, age, density. Age and density tips are omitted for
// unremarkable areas.
func Insights(rec model.DemographicRecord) []model.Insight {
	tips := make([]model.Insight, 0, 4)

	switch {
	case rec.MedianHouseholdIncome >= 14000:
		tips = append(tips, model.Insight{Category: InsightIncome,
			Message: "High-income neighbourhood: premium or lifestyle brands may thrive here."})
	case rec.MedianHouseholdIncome >= 10000:
		tips = append(tips, model.Insight{Category: InsightIncome,
			Message: "Mid-to-upper income area: broad product range likely to perform well."})
	default:
		tips = append(tips, model.Insight{Category: InsightIncome,
			Message: "Value-conscious area: competitive pricing and everyday essentials resonate."})
	}

	switch {
	case rec.Dwellings.HDB >= 75:
		tips = append(tips, model.Insight{Category: InsightDwelling,
			Message: fmt.Sprintf("Predominantly HDB estate (%d%%): high foot traffic near void decks and wet markets.", rec.Dwellings.HDB)})
	case rec.Dwellings.Landed >= 30:
		tips = append(tips, model.Insight{Category: InsightDwelling,
			Message: fmt.Sprintf("High landed-property share (%d%%): car ownership likely, large-format retail may be viable.", rec.Dwellings.Landed)})
	default:
		tips = append(tips, model.Insight{Category: InsightDwelling,
			Message: "Mixed condo/HDB zone: diverse consumer base, food & beverage tends to perform strongly."})
	}

	switch {
	case rec.AgeGroups.Senior >= 20:
		tips = append(tips, model.Insight{Category: InsightAge,
			Message: fmt.Sprintf("Ageing population (%d%% seniors): healthcare, convenience and accessible services in demand.", rec.AgeGroups.Senior)})
	case rec.AgeGroups.Young >= 30:
		tips = append(tips, model.Insight{Category: InsightAge,
			Message: fmt.Sprintf("Young demographic (%d%% under-25): education, childcare and family-oriented concepts may do well.", rec.AgeGroups.Young)})
	}

	switch {
	case rec.Density >= 15000:
		tips = append(tips, model.Insight{Category: InsightDensity,
			Message: "Very high population density: strong captive customer base for neighbourhood businesses."})
	case rec.Density < 1000:
		tips = append(tips, model.Insight{Category: InsightDensity,
			Message: "Low-density area: destination-driven shoppers, parking and accessibility are key."})
	}

	return tips
}
