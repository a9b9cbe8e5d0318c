package config

import "fmt"

// wardNames maps ward numbers to their names. It is read-only after package
// initialisation and shared by every request.
var wardNames = map[int]string{
	1:  "Fort Kochi",
	2:  "Kalvathy",
	3:  "Earavely",
	4:  "Karippalam",
	5:  "Cheralayi",
	6:  "Mattanchery",
	7:  "Chakkamadam",
	8:  "Karuvelippady",
	9:  "Island North",
	10: "Ravipuram",
	11: "Ernakulam South",
	12: "Gandhi Nagar",
	13: "Kathrikadavu",
	14: "Ernakulam Central",
	15: "Ernakulam North",
	16: "Kaloor South",
	17: "Kaloor North",
	18: "Thrikkanarvattom",
	19: "Ayyappankavu",
	20: "Pottakuzhy",
	21: "Elamakkara South",
	22: "Pachalam",
	23: "Thattazham",
	24: "Vaduthala West",
	25: "Vaduthala East",
	26: "Elamakkara North",
	27: "Puthukkalavattam",
	28: "Kunnumpuram",
	29: "Ponekkara",
	30: "Edappally",
	31: "Changampuzha",
	32: "Dhevankulangara",
	33: "Palarivattom",
	34: "Stadium",
	35: "Karanakkodam",
	36: "Puthiyaroad",
	37: "Padivattam",
	38: "Vennala",
	39: "Chakkaraparambu",
	40: "Chalikkavattam",
	41: "Thammanam",
	42: "Elamkulam",
	43: "Girinagar",
	44: "Ponnurunni",
	45: "Ponnurunni East",
	46: "Vyttila",
	47: "Poonithura",
	48: "Vyttila Janatha",
	49: "Kadavanthra",
	50: "Panampilly Nagar",
	51: "Perumanoor",
	52: "Konthuruthy",
	53: "Thevara",
	54: "Island South",
	55: "Kadebhagam",
	56: "Palluruthy East",
	57: "Thazhuppu",
	58: "Eadakochi North",
	59: "Edakochi South",
	60: "Perumbadappu",
	61: "Konam",
	62: "Palluruthy Kacheripady",
	63: "Nambyapuram",
	64: "Palluruthy",
	65: "Pullardesam",
	66: "Tharebhagam",
	67: "Thoppumpady",
	68: "Mundamvely East",
	69: "Mundamvely",
	70: "Manassery",
	71: "Moolamkuzhy",
	72: "Chullickal",
	73: "Nasrathu",
	74: "Panayappilly",
	75: "Amaravathy",
	76: "Fortkochi Veli",
}

// MaxWard is the highest ward number known to the lookup table.
const MaxWard = 76

// Ward is one entry of the ward lookup table.
type Ward struct {
	Number int    `json:"number"`
	Name   string `json:"name"`
}

// WardName returns the name for ward n, falling back to "Ward n" for
// numbers missing from the table.
func WardName(n int) string {
	if name, ok := wardNames[n]; ok {
		return name
	}
	return fmt.Sprintf("Ward %d", n)
}

// ValidWard reports whether n is a ward number the service accepts.
func ValidWard(n int) bool {
	return n >= 1 && n <= MaxWard
}

// WardOptions lists wards 1..MaxWard in order, as offered on profile forms.
func WardOptions() []Ward {
	opts := make([]Ward, 0, MaxWard)
	for i := 1; i <= MaxWard; i++ {
		opts = append(opts, Ward{Number: i, Name: WardName(i)})
	}
	return opts
}
