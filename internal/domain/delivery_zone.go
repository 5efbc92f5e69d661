package domain

// Provinces lists the Panamanian provinces and comarcas a zone can belong to.
var Provinces = []string{
	"Bocas del Toro",
	"Chiriquí",
	"Coclé",
	"Colón",
	"Darién",
	"Herrera",
	"Los Santos",
	"Panamá",
	"Panamá Oeste",
	"Veraguas",
	"Guna Yala",
	"Emberá-Wounaan",
	"Ngäbe-Buglé",
}

// IsProvince reports whether name is one of Provinces.
func IsProvince(name string) bool {
	for _, p := range Provinces {
		if p == name {
			return true
		}
	}
	return false
}

// DeliveryZoneFields are the writable columns of a delivery zone.
type DeliveryZoneFields struct {
	Province      string  `json:"province"`
	Area          Text    `json:"area"`
	Cost          float64 `json:"cost"`
	EstimatedTime Text    `json:"estimated_time"`
}

// DeliveryZone is a shipping cost entry for a province or area.
type DeliveryZone struct {
	ID int64 `json:"id"`
	DeliveryZoneFields
}

func (z DeliveryZone) Key() int64 { return z.ID }

// DeliveryZones have no images.
func (z DeliveryZone) Images() []string { return nil }
