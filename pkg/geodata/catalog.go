// Package geodata decodes v2ray-style geosite and geoip data files.
package geodata

// SourceDefinition describes a well-known upstream data file.
type SourceDefinition struct {
	ID          string
	Name        string
	URL         string
	Kind        Kind
	Description string
}

// Catalog lists the built-in upstream sources a rules file may refer to by ID.
var Catalog = map[string]SourceDefinition{
	"runetfreedom/geosite": {
		ID:          "runetfreedom/geosite",
		Name:        "runetfreedom geosite",
		URL:         "https://github.com/runetfreedom/russia-v2ray-rules-dat/releases/latest/download/geosite.dat",
		Kind:        KindSite,
		Description: "Domain lists for services blocked or throttled in Russia.",
	},
	"runetfreedom/geoip": {
		ID:          "runetfreedom/geoip",
		Name:        "runetfreedom geoip",
		URL:         "https://github.com/runetfreedom/russia-v2ray-rules-dat/releases/latest/download/geoip.dat",
		Kind:        KindIP,
		Description: "IP lists for services blocked or throttled in Russia.",
	},
	"loyalsoldier/geosite": {
		ID:          "loyalsoldier/geosite",
		Name:        "Loyalsoldier geosite",
		URL:         "https://github.com/Loyalsoldier/v2ray-rules-dat/releases/latest/download/geosite.dat",
		Kind:        KindSite,
		Description: "Enhanced v2fly domain list with extra categories.",
	},
	"loyalsoldier/geoip": {
		ID:          "loyalsoldier/geoip",
		Name:        "Loyalsoldier geoip",
		URL:         "https://github.com/Loyalsoldier/v2ray-rules-dat/releases/latest/download/geoip.dat",
		Kind:        KindIP,
		Description: "Country IP ranges plus private and service ranges.",
	},
	"v2fly/geosite": {
		ID:          "v2fly/geosite",
		Name:        "v2fly domain-list-community",
		URL:         "https://github.com/v2fly/domain-list-community/releases/latest/download/dlc.dat",
		Kind:        KindSite,
		Description: "Community maintained domain list.",
	},
	"v2fly/geoip": {
		ID:          "v2fly/geoip",
		Name:        "v2fly geoip",
		URL:         "https://github.com/v2fly/geoip/releases/latest/download/geoip.dat",
		Kind:        KindIP,
		Description: "Country IP ranges built from MaxMind GeoLite2.",
	},
}
