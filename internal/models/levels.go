package models

// Administrative levels a reporter can be assigned to.
const (
	// LevelState scopes a reporter to an entire state.
	LevelState = "STATE"
	// LevelDistrict scopes a reporter to one district.
	LevelDistrict = "DISTRICT"
	// LevelMandal scopes a reporter to one mandal.
	LevelMandal = "MANDAL"
	// LevelAssembly scopes a reporter to one assembly constituency.
	LevelAssembly = "ASSEMBLY"
)

// LocationFieldForLevel maps a level to the reporter column holding its location.
func LocationFieldForLevel(level string) (string, bool) {
	switch level {
	case LevelState:
		return "state_id", true
	case LevelDistrict:
		return "district_id", true
	case LevelMandal:
		return "mandal_id", true
	case LevelAssembly:
		return "assembly_constituency_id", true
	default:
		return "", false
	}
}

// ValidLevel reports whether the value is a known administrative level.
func ValidLevel(level string) bool {
	_, ok := LocationFieldForLevel(level)
	return ok
}
