package models

// Team is one of the four tracks an assignment can belong to.
type Team string

const (
	TeamQuantitativeResearch   Team = "Quantitative Research"
	TeamStrategyImplementation Team = "Strategy Implementation"
	TeamSoftwareDevelopment    Team = "Software Development"
	TeamBusiness               Team = "Business"
)

// Teams lists the tracks in the priority order used when reading assignment rosters.
var Teams = []Team{
	TeamQuantitativeResearch,
	TeamStrategyImplementation,
	TeamSoftwareDevelopment,
	TeamBusiness,
}

// Valid reports whether t is one of the known tracks.
func (t Team) Valid() bool {
	for _, known := range Teams {
		if t == known {
			return true
		}
	}
	return false
}

func (t Team) String() string { return string(t) }
