package charts

import "github.com/apodwikat/abtest/internal/domain"

// worldRegions maps ISO3 codes to the region names used by the echarts world
// map where they differ from the common English country name.
var worldRegions = map[string]string{
	"ATF": "Fr. S. Antarctic Lands",
	"BHS": "Bahamas",
	"BIH": "Bosnia and Herz.",
	"BOL": "Bolivia",
	"BRN": "Brunei",
	"CAF": "Central African Rep.",
	"CIV": "Côte d'Ivoire",
	"COD": "Dem. Rep. Congo",
	"COG": "Congo",
	"CZE": "Czech Rep.",
	"DOM": "Dominican Rep.",
	"ESH": "W. Sahara",
	"FLK": "Falkland Is.",
	"GBR": "United Kingdom",
	"GMB": "Gambia",
	"GNQ": "Eq. Guinea",
	"IRN": "Iran",
	"KGZ": "Kyrgyzstan",
	"KOR": "Korea",
	"LAO": "Lao PDR",
	"MDA": "Moldova",
	"MKD": "Macedonia",
	"MMR": "Myanmar",
	"PRK": "Dem. Rep. Korea",
	"PSE": "Palestine",
	"RUS": "Russia",
	"SLB": "Solomon Is.",
	"SSD": "S. Sudan",
	"SWZ": "Swaziland",
	"SYR": "Syria",
	"TLS": "Timor-Leste",
	"TZA": "Tanzania",
	"USA": "United States",
	"VEN": "Venezuela",
	"VNM": "Vietnam",
}

// regionName returns the world map region for a country, or "" when the
// country could not be resolved.
func regionName(c domain.CountryCount) string {
	if name, ok := worldRegions[c.ISO3]; ok {
		return name
	}
	return c.Name
}
