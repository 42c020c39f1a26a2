package constants

import "strings"

type BloodGroup string

const (
	APositive  BloodGroup = "A+"
	ANegative  BloodGroup = "A-"
	BPositive  BloodGroup = "B+"
	BNegative  BloodGroup = "B-"
	ABPositive BloodGroup = "AB+"
	ABNegative BloodGroup = "AB-"
	OPositive  BloodGroup = "O+"
	ONegative  BloodGroup = "O-"
)

var allBloodGroups = []BloodGroup{
	APositive, ANegative,
	BPositive, BNegative,
	ABPositive, ABNegative,
	OPositive, ONegative,
}

// compatibility maps a recipient's blood group to the donor groups they can
// receive from. AB+ is the universal recipient; O- the universal donor.
var compatibility = map[BloodGroup][]BloodGroup{
	APositive:  {APositive, ANegative, OPositive, ONegative},
	ANegative:  {ANegative, ONegative},
	BPositive:  {BPositive, BNegative, OPositive, ONegative},
	BNegative:  {BNegative, ONegative},
	ABPositive: {APositive, ANegative, BPositive, BNegative, ABPositive, ABNegative, OPositive, ONegative},
	ABNegative: {ANegative, BNegative, ABNegative, ONegative},
	OPositive:  {OPositive, ONegative},
	ONegative:  {ONegative},
}

// BloodGroupsAsStrings returns the eight canonical values in stable order.
func BloodGroupsAsStrings() []string {
	result := make([]string, len(allBloodGroups))
	for i, bg := range allBloodGroups {
		result[i] = string(bg)
	}
	return result
}

// IsValidBloodGroup reports whether s is exactly one of the eight canonical values.
func IsValidBloodGroup(s string) bool {
	for _, bg := range allBloodGroups {
		if s == string(bg) {
			return true
		}
	}
	return false
}

// CompatibleDonorGroups returns the donor groups a recipient with the given
// group can receive from, or nil for an unknown group.
func CompatibleDonorGroups(recipient BloodGroup) []BloodGroup {
	return compatibility[recipient]
}

// CanonicalizeBloodGroup normalizes casing/whitespace and reports whether the
// input is one of the eight canonical values.
func CanonicalizeBloodGroup(input string) (BloodGroup, bool) {
	cleaned := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(input), " ", ""))
	if IsValidBloodGroup(cleaned) {
		return BloodGroup(cleaned), true
	}
	return "", false
}
