package config

import "github.com/williampepple1/swimtimes/pkg/models"

// DefaultSearchURL is the portal page hosting the individual times search
const DefaultSearchURL = "https://data.usaswimming.org/datahub/usas/individualsearch/times"

// DefaultUserAgents provides a list of common user agents
var DefaultUserAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.2 Safari/605.1.15",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36",
}

// DefaultRoster is used when neither the config nor a roster file names athletes
var DefaultRoster = []models.Athlete{
	{Name: "Anna Abdikeeva", First: "Anna", Last: "Abdikeeva"},
	{Name: "Valerie Dronova", First: "Valerie", Last: "Dronova"},
	{Name: "Imari Racine", First: "Imari", Last: "Racine"},
	{Name: "Kexin Liu", First: "Kexin", Last: "Liu"},
}
