package turbine

import "sort"

// Model describes a commercial turbine model offered in site reports.
type Model struct {
	Name           string  `json:"model"`
	Class          string  `json:"class"`
	RatedPowerMW   float64 `json:"rated_power_mw"`
	RotorDiameterM float64 `json:"rotor_diameter_m"`
	SweptAreaM2    float64 `json:"swept_area_m2"`
	HubHeightM     float64 `json:"hub_height_m"`
	CutInSpeedMS   float64 `json:"cut_in_speed_ms"`
	CutOutSpeedMS  float64 `json:"cut_out_speed_ms"`
	Description    string  `json:"description"`
}

var catalogue = []Model{
	{
		Name:           "Vestas V162-6.8 MW",
		Class:          "IEC III",
		RatedPowerMW:   6.8,
		RotorDiameterM: 162,
		SweptAreaM2:    20612,
		HubHeightM:     166,
		CutInSpeedMS:   3.0,
		CutOutSpeedMS:  25.0,
		Description:    "Optimized for low-to-medium wind sites with high capacity retention in complex terrains.",
	},
	{
		Name:           "GE Haliade-X 12 MW",
		Class:          "Offshore",
		RatedPowerMW:   12.0,
		RotorDiameterM: 220,
		SweptAreaM2:    38013,
		HubHeightM:     150,
		CutInSpeedMS:   3.5,
		CutOutSpeedMS:  30.0,
		Description:    "Ultra-high output turbine delivering industry-leading annual energy production for coastal corridors.",
	},
	{
		Name:           "Siemens Gamesa SG 14-222 DD",
		Class:          "Offshore",
		RatedPowerMW:   14.0,
		RotorDiameterM: 222,
		SweptAreaM2:    38710,
		HubHeightM:     155,
		CutInSpeedMS:   3.0,
		CutOutSpeedMS:  30.0,
		Description:    "Direct-drive drivetrain with minimal maintenance requirements and strong typhoon tolerance.",
	},
	{
		Name:           "Nordex N163/6.X",
		Class:          "IEC III",
		RatedPowerMW:   6.0,
		RotorDiameterM: 163,
		SweptAreaM2:    20898,
		HubHeightM:     164,
		CutInSpeedMS:   3.0,
		CutOutSpeedMS:  26.0,
		Description:    "High and consistent production for continental interiors with low noise signature.",
	},
	{
		Name:           "Enercon E-160 EP5",
		Class:          "IEC III",
		RatedPowerMW:   5.5,
		RotorDiameterM: 160,
		SweptAreaM2:    20106,
		HubHeightM:     166,
		CutInSpeedMS:   2.5,
		CutOutSpeedMS:  28.0,
		Description:    "Gearless direct drive with excellent grid compliance for emerging market deployments.",
	},
}

// Catalogue returns a copy of the reference turbine models.
func Catalogue() []Model {
	out := make([]Model, len(catalogue))
	copy(out, catalogue)
	return out
}

// ModelByName looks up a model by its exact name.
func ModelByName(name string) (Model, bool) {
	for _, m := range catalogue {
		if m.Name == name {
			return m, true
		}
	}
	return Model{}, false
}

// SortByRatedPower orders models by rated power, largest first.
func SortByRatedPower(models []Model) {
	sort.SliceStable(models, func(i, j int) bool {
		return models[i].RatedPowerMW > models[j].RatedPowerMW
	})
}

// SortByCutIn orders models by cut-in speed, lowest first.
func SortByCutIn(models []Model) {
	sort.SliceStable(models, func(i, j int) bool {
		return models[i].CutInSpeedMS < models[j].CutInSpeedMS
	})
}
