package station

import (
	"fmt"

	"github.com/airsante/airwatch/internal/table"
)

// UnknownDepartment is the sentinel name used when a department code has no
// known entry.
const UnknownDepartment = "Inconnu"

// departmentNames maps French department codes to their names. Corsica uses
// the alphanumeric 2A/2B codes and all overseas territories collapse under 97.
var departmentNames = map[string]string{
	"01": "Ain",
	"02": "Aisne",
	"03": "Allier",
	"04": "Alpes-de-Haute-Provence",
	"05": "Hautes-Alpes",
	"06": "Alpes-Maritimes",
	"07": "Ardèche",
	"08": "Ardennes",
	"09": "Ariège",
	"10": "Aube",
	"11": "Aude",
	"12": "Aveyron",
	"13": "Bouches-du-Rhône",
	"14": "Calvados",
	"15": "Cantal",
	"16": "Charente",
	"17": "Charente-Maritime",
	"18": "Cher",
	"19": "Corrèze",
	"2A": "Corse-du-Sud",
	"2B": "Haute-Corse",
	"21": "Côte-d'Or",
	"22": "Côtes-d'Armor",
	"23": "Creuse",
	"24": "Dordogne",
	"25": "Doubs",
	"26": "Drôme",
	"27": "Eure",
	"28": "Eure-et-Loir",
	"29": "Finistère",
	"30": "Gard",
	"31": "Haute-Garonne",
	"32": "Gers",
	"33": "Gironde",
	"34": "Hérault",
	"35": "Ille-et-Vilaine",
	"36": "Indre",
	"37": "Indre-et-Loire",
	"38": "Isère",
	"39": "Jura",
	"40": "Landes",
	"41": "Loir-et-Cher",
	"42": "Loire",
	"43": "Haute-Loire",
	"44": "Loire-Atlantique",
	"45": "Loiret",
	"46": "Lot",
	"47": "Lot-et-Garonne",
	"48": "Lozère",
	"49": "Maine-et-Loire",
	"50": "Manche",
	"51": "Marne",
	"52": "Haute-Marne",
	"53": "Mayenne",
	"54": "Meurthe-et-Moselle",
	"55": "Meuse",
	"56": "Morbihan",
	"57": "Moselle",
	"58": "Nièvre",
	"59": "Nord",
	"60": "Oise",
	"61": "Orne",
	"62": "Pas-de-Calais",
	"63": "Puy-de-Dôme",
	"64": "Pyrénées-Atlantiques",
	"65": "Hautes-Pyrénées",
	"66": "Pyrénées-Orientales",
	"67": "Bas-Rhin",
	"68": "Haut-Rhin",
	"69": "Rhône",
	"70": "Haute-Saône",
	"71": "Saône-et-Loire",
	"72": "Sarthe",
	"73": "Savoie",
	"74": "Haute-Savoie",
	"75": "Paris",
	"76": "Seine-Maritime",
	"77": "Seine-et-Marne",
	"78": "Yvelines",
	"79": "Deux-Sèvres",
	"80": "Somme",
	"81": "Tarn",
	"82": "Tarn-et-Garonne",
	"83": "Var",
	"84": "Vaucluse",
	"85": "Vendée",
	"86": "Vienne",
	"87": "Haute-Vienne",
	"88": "Vosges",
	"89": "Yonne",
	"90": "Territoire de Belfort",
	"91": "Essonne",
	"92": "Hauts-de-Seine",
	"93": "Seine-Saint-Denis",
	"94": "Val-de-Marne",
	"95": "Val-d'Oise",
	"97": "Outre-mer",
}

// DepartmentCode derives the department code from an INSEE commune code:
// its first two characters. This covers Corsica (2A004 -> 2A) and overseas
// communes (97101 -> 97).
func DepartmentCode(communeCode string) string {
	if len(communeCode) < 2 {
		return ""
	}
	return communeCode[:2]
}

// DepartmentName resolves a department code to its name, falling back to the
// UnknownDepartment sentinel.
func DepartmentName(code string) string {
	if name, ok := departmentNames[code]; ok {
		return name
	}
	return UnknownDepartment
}

// Geo holds the geographic metadata attached to a measurement site.
type Geo struct {
	CommuneCode    string
	Commune        string
	Longitude      string
	Latitude       string
	DepartmentCode string
	Department     string
}

// Registry resolves site codes to geographic metadata. It is built from the
// station export snapshot and read-only afterwards.
type Registry struct {
	sites map[string]Geo
}

// FromTable builds a registry from a normalized station snapshot. The
// snapshot must carry a "code" column holding the site code; geography
// columns missing from the snapshot resolve to empty strings.
func FromTable(t *table.Table) (*Registry, error) {
	if !t.HasColumn("code") {
		return nil, fmt.Errorf("station snapshot: missing required column %q", "code")
	}

	sites := make(map[string]Geo, len(t.Rows))
	for _, row := range t.Rows {
		code := row["code"]
		if code == "" {
			continue
		}
		deptCode := DepartmentCode(row["code_commune"])
		sites[code] = Geo{
			CommuneCode:    row["code_commune"],
			Commune:        row["commune"],
			Longitude:      row["longitude"],
			Latitude:       row["latitude"],
			DepartmentCode: deptCode,
			Department:     DepartmentName(deptCode),
		}
	}
	return &Registry{sites: sites}, nil
}

// Lookup returns the geography for a site code.
func (r *Registry) Lookup(siteCode string) (Geo, bool) {
	geo, ok := r.sites[siteCode]
	return geo, ok
}

// Len returns the number of registered sites.
func (r *Registry) Len() int {
	return len(r.sites)
}
