package gazetteer

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Country is one canonical country record, read-only after load.
type Country struct {
	Name   string
	Alpha3 string
	Lat    float64
	Lng    float64
}

// City maps a city name to its country. Duplicate names are resolved
// at load time, the larger population wins.
type City struct {
	Name       string
	Country    string
	Population float64
}

// Gazetteer resolves location strings to canonical country names. It
// is immutable after Load and safe to share across goroutines.
type Gazetteer struct {
	countries map[string]Country
	cities    map[string]City
}

// aliases maps common shorthand to the canonical country name. Applied
// after the possessive marker is stripped.
var aliases = map[string]string{
	"US":                       "United States",
	"U.S.":                     "United States",
	"USA":                      "United States",
	"U.S.A":                    "United States",
	"America":                  "United States",
	"the United States":        "United States",
	"United States of America": "United States",
	"UK":                       "United Kingdom",
	"U.K.":                     "United Kingdom",
	"Gaza":                     "Palestine",
	"the Gaza Strip":           "Palestine",
	"West Bank":                "Palestine",
	"the West Bank":            "Palestine",
}

// Normalize strips a trailing possessive marker and rewrites known
// aliases to the canonical country name.
func Normalize(location string) string {
	location = strings.TrimSpace(location)
	location = strings.TrimSuffix(location, "'s")
	if canonical, ok := aliases[location]; ok {
		return canonical
	}
	return location
}

// New builds a gazetteer from in-memory records. City country names
// are normalized and duplicate city names keep the larger population.
func New(countries []Country, cities []City) *Gazetteer {
	g := &Gazetteer{
		countries: make(map[string]Country, len(countries)),
		cities:    make(map[string]City, len(cities)),
	}
	for _, c := range countries {
		g.countries[c.Name] = c
	}
	for _, city := range cities {
		city.Country = Normalize(city.Country)
		existing, ok := g.cities[city.Name]
		if !ok || city.Population > existing.Population {
			g.cities[city.Name] = city
		}
	}
	return g
}

// Load builds the gazetteer from a country JSON file and a city CSV
// file. Failure of either source is fatal to startup.
func Load(countriesPath, citiesPath string) (*Gazetteer, error) {
	countries, err := loadCountries(countriesPath)
	if err != nil {
		return nil, fmt.Errorf("load countries %s: %w", countriesPath, err)
	}

	cities, err := loadCities(citiesPath)
	if err != nil {
		return nil, fmt.Errorf("load cities %s: %w", citiesPath, err)
	}

	return New(countries, cities), nil
}

// Resolve maps a location string to a country name. A country match
// takes precedence over a city match for the same text.
func (g *Gazetteer) Resolve(location string) (string, bool) {
	name := Normalize(location)
	if _, ok := g.countries[name]; ok {
		return name, true
	}
	if city, ok := g.cities[name]; ok {
		return city.Country, true
	}
	return "", false
}

// Country returns the full record for a canonical country name.
func (g *Gazetteer) Country(name string) (Country, bool) {
	c, ok := g.countries[name]
	return c, ok
}

// IsCountry reports whether name is a canonical country name.
func (g *Gazetteer) IsCountry(name string) bool {
	_, ok := g.countries[name]
	return ok
}

type countryRecord struct {
	Name struct {
		Common string `json:"common"`
	} `json:"name"`
	CCA3   string    `json:"cca3"`
	LatLng []float64 `json:"latlng"`
}

func loadCountries(path string) ([]Country, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var records []countryRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, err
	}

	countries := make([]Country, 0, len(records))
	for _, rec := range records {
		c := Country{Name: rec.Name.Common, Alpha3: rec.CCA3}
		if len(rec.LatLng) == 2 {
			c.Lat, c.Lng = rec.LatLng[0], rec.LatLng[1]
		}
		countries = append(countries, c)
	}
	return countries, nil
}

func loadCities(path string) ([]City, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	header, err := reader.Read()
	if err != nil {
		return nil, err
	}

	col := make(map[string]int, len(header))
	for i, name := range header {
		col[name] = i
	}
	for _, required := range []string{"city_ascii", "country", "pop"} {
		if _, ok := col[required]; !ok {
			return nil, fmt.Errorf("missing column %q", required)
		}
	}

	var cities []City
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		// Rows with an unparsable population still enter with 0 so a
		// duplicate with a real count can replace them.
		pop, _ := strconv.ParseFloat(row[col["pop"]], 64)
		cities = append(cities, City{
			Name:       row[col["city_ascii"]],
			Country:    row[col["country"]],
			Population: pop,
		})
	}
	return cities, nil
}
