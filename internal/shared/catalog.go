package shared

// Static pick lists bundled with the service. The city catalog backs the
// picker's instant path: selections built from it never touch the geocoder.

type City struct {
	Slug    string
	Name    string
	Country string
	Lat     float64
	Lng     float64
	Address string
}

var Cities = []City{
	{Slug: "mexico-city", Name: "Mexico City", Country: "Mexico", Lat: 19.4326, Lng: -99.1332, Address: "Mexico City, CDMX, Mexico"},
	{Slug: "guadalajara", Name: "Guadalajara", Country: "Mexico", Lat: 20.6597, Lng: -103.3496, Address: "Guadalajara, Jalisco, Mexico"},
	{Slug: "monterrey", Name: "Monterrey", Country: "Mexico", Lat: 25.6866, Lng: -100.3161, Address: "Monterrey, Nuevo León, Mexico"},
	{Slug: "puebla", Name: "Puebla", Country: "Mexico", Lat: 19.0414, Lng: -98.2063, Address: "Puebla, Puebla, Mexico"},
	{Slug: "tijuana", Name: "Tijuana", Country: "Mexico", Lat: 32.5149, Lng: -117.0382, Address: "Tijuana, Baja California, Mexico"},
	{Slug: "cancun", Name: "Cancún", Country: "Mexico", Lat: 21.1619, Lng: -86.8515, Address: "Cancún, Quintana Roo, Mexico"},
	{Slug: "merida", Name: "Mérida", Country: "Mexico", Lat: 20.9674, Lng: -89.5926, Address: "Mérida, Yucatán, Mexico"},
	{Slug: "queretaro", Name: "Querétaro", Country: "Mexico", Lat: 20.5888, Lng: -100.3899, Address: "Querétaro, Querétaro, Mexico"},
	{Slug: "miami", Name: "Miami", Country: "United States", Lat: 25.7617, Lng: -80.1918, Address: "Miami, FL, USA"},
	{Slug: "los-angeles", Name: "Los Angeles", Country: "United States", Lat: 34.0522, Lng: -118.2437, Address: "Los Angeles, CA, USA"},
	{Slug: "madrid", Name: "Madrid", Country: "Spain", Lat: 40.4168, Lng: -3.7038, Address: "Madrid, Spain"},
	{Slug: "bogota", Name: "Bogotá", Country: "Colombia", Lat: 4.711, Lng: -74.0721, Address: "Bogotá, Colombia"},
}

func CityBySlug(slug string) (City, bool) {
	for _, c := range Cities {
		if c.Slug == slug {
			return c, true
		}
	}
	return City{}, false
}

type Nationality struct {
	Code string // ISO 3166-1 alpha-2
	Name string
}

var Nationalities = []Nationality{
	{"AR", "Argentina"}, {"AU", "Australia"}, {"BE", "Belgium"}, {"BO", "Bolivia"},
	{"BR", "Brazil"}, {"CA", "Canada"}, {"CL", "Chile"}, {"CN", "China"},
	{"CO", "Colombia"}, {"CR", "Costa Rica"}, {"CU", "Cuba"}, {"DE", "Germany"},
	{"DO", "Dominican Republic"}, {"EC", "Ecuador"}, {"ES", "Spain"}, {"FR", "France"},
	{"GB", "United Kingdom"}, {"GT", "Guatemala"}, {"HN", "Honduras"}, {"IE", "Ireland"},
	{"IN", "India"}, {"IT", "Italy"}, {"JP", "Japan"}, {"KR", "South Korea"},
	{"MX", "Mexico"}, {"NI", "Nicaragua"}, {"NL", "Netherlands"}, {"PA", "Panama"},
	{"PE", "Peru"}, {"PH", "Philippines"}, {"PL", "Poland"}, {"PT", "Portugal"},
	{"PY", "Paraguay"}, {"RU", "Russia"}, {"SE", "Sweden"}, {"SV", "El Salvador"},
	{"TR", "Turkey"}, {"UA", "Ukraine"}, {"US", "United States"}, {"UY", "Uruguay"},
	{"VE", "Venezuela"}, {"VN", "Vietnam"},
}

func ValidNationality(code string) bool {
	for _, n := range Nationalities {
		if n.Code == code {
			return true
		}
	}
	return false
}

type Language struct {
	Code string // ISO 639-1
	Name string
}

var Languages = []Language{
	{"en", "English"}, {"es", "Spanish"}, {"pt", "Portuguese"}, {"fr", "French"},
	{"de", "German"}, {"it", "Italian"}, {"ja", "Japanese"}, {"ko", "Korean"},
	{"zh", "Chinese"}, {"ar", "Arabic"}, {"ru", "Russian"}, {"hi", "Hindi"},
	{"nl", "Dutch"}, {"pl", "Polish"}, {"tr", "Turkish"}, {"vi", "Vietnamese"},
}

func ValidLanguage(code string) bool {
	for _, l := range Languages {
		if l.Code == code {
			return true
		}
	}
	return false
}

var Interests = []string{
	"travel", "music", "food", "fitness", "movies", "art", "gaming", "reading",
	"dancing", "hiking", "photography", "cooking", "sports", "yoga", "pets",
	"fashion", "technology", "volunteering", "beach", "coffee", "wine",
	"concerts", "camping", "languages",
}

func ValidInterest(v string) bool {
	for _, i := range Interests {
		if i == v {
			return true
		}
	}
	return false
}
