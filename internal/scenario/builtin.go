package scenario

// BuiltIn returns a catalog with the standard scenarios.
//
// swarm and conflict both place one stealth aircraft and fifty loitering
// munitions in front of light biological and rotary clutter.
func BuiltIn() *Catalog {
	c := NewCatalog()
	wallOfSteel := []Group{
		{Classifications: []string{"fixedWingStealth"}, Count: 1},
		{Classifications: []string{"loiteringMunition"}, Count: 50},
		{Classifications: []string{"avian", "civilianHelo"}, Min: 20, Max: 30},
	}
	for _, s := range []Scenario{
		{
			Name:        "swarm",
			Description: "Saturation attack: stealth strike aircraft escorted by a loitering munition swarm",
			Groups:      wallOfSteel,
		},
		{
			Name:        "conflict",
			Description: "Open conflict, same order of battle as swarm",
			Groups:      wallOfSteel,
		},
		{
			Name:        "mixed",
			Description: "Training picture drawn from biological, UAV, airliner and fighter traffic",
			Groups: []Group{
				{Classifications: []string{"avian", "rotaryUAV", "commercialAirliner", "fighterJet"}, Min: 50, Max: 100},
			},
		},
		{
			Name:        "peace",
			Description: "Civil traffic with the occasional stray UAV",
			Groups: []Group{
				{Classifications: []string{"avian", "civilianHelo", "commercialAirliner"}, Min: 40, Max: 80},
				{Classifications: []string{"rotaryUAV"}, Min: 0, Max: 2},
			},
		},
		{
			Name:        "tension",
			Description: "Civil traffic shadowed by fighters and reconnaissance UAVs",
			Groups: []Group{
				{Classifications: []string{"avian", "civilianHelo", "commercialAirliner"}, Min: 30, Max: 60},
				{Classifications: []string{"rotaryUAV", "fighterJet"}, Min: 10, Max: 25},
			},
		},
	} {
		// built-ins are static and always valid
		_ = c.Add(s)
	}
	return c
}
