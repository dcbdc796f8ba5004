package airquality

// Canonical column names of the normalized pollutant feed.
const (
	ColDateStart   = "date_de_debut"
	ColDateEnd     = "date_de_fin"
	ColOrganisme   = "organisme"
	ColZasCode     = "code_zas"
	ColZas         = "zas"
	ColSiteCode    = "code_site"
	ColSiteName    = "nom_site"
	ColPollutant   = "polluant"
	ColValue       = "valeur"
	ColUnit        = "unite_de_mesure"
	ColValidity    = "validite"
	ColCommuneCode = "code_commune"
	ColCommune     = "commune"
	ColLongitude   = "longitude"
	ColLatitude    = "latitude"
	ColDeptCode    = "code_departement"
	ColDept        = "departement"
	ColWeek        = "semaine"
	ColMaxWeek     = "max_week"
	ColIndexKind   = "indice_qualite_air"
	ColRisk        = "risque"
)

// TimeLayout is the timestamp format used in persisted datasets.
const TimeLayout = "2006/01/02 15:04:05"
