// Package domain holds the core data model: the asset catalog, normalized
// price series, allocation tables and computed portfolio records.
package domain

// Asset is an immutable catalog entry mapping an acronym to its display name
// and the canonical file name of its scraped price series.
type Asset struct {
	Acronym    string `json:"acronym"`
	Name       string `json:"name"`
	SeriesFile string `json:"series_file"`
}

// Catalog lists the five supported asset classes in canonical order. This
// order drives column ordering everywhere downstream, regardless of the order
// the user typed the acronyms in.
var Catalog = []Asset{
	{Acronym: "ST", Name: "Stocks", SeriesFile: "amundi-msci-wrld-ae-c.csv"},
	{Acronym: "CB", Name: "Corporate Bonds", SeriesFile: "ishares-global-corporate-bond-$.csv"},
	{Acronym: "PB", Name: "Public Bonds", SeriesFile: "db-x-trackers-ii-global-sovereign-5.csv"},
	{Acronym: "GO", Name: "Gold", SeriesFile: "spdr-gold-trust.csv"},
	{Acronym: "CA", Name: "Cash", SeriesFile: "usdollar.csv"},
}

// AssetByAcronym looks up a catalog entry by acronym.
func AssetByAcronym(acronym string) (Asset, bool) {
	for _, a := range Catalog {
		if a.Acronym == acronym {
			return a, true
		}
	}
	return Asset{}, false
}
