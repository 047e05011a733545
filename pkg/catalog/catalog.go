// Package catalog is the single source of the enumerations shared by request
// validation, persistence checks and any presentation client. Nothing else in
// the module declares these lists.
package catalog

import "slices"

// Groups are the organizational units that scope users and items.
var Groups = []string{
	"DIR SECT", "FSEG", "IT", "QRS", "PCM", "PSEG", "MMG", "ADMIN",
	"FINANCE", "MT", "SECURITY", "TFA", "CAL", "SARC", "ESRG", "FC&HB",
}

// Units are the accepted units of measure for an item's quantity.
var Units = []string{"kg", "dozen", "packet", "box", "piece", "pairs"}

// Cadres are the employment classification categories.
var Cadres = []string{"drds", "drtc", "admin"}

// EmploymentTypes are the accepted employment types.
var EmploymentTypes = []string{"permanent", "temporary"}

// Genders are the accepted (optional) gender values.
var Genders = []string{"male", "female", "other"}

// Account roles.
const (
	RoleUser            = "user"
	RoleInventoryHolder = "inventory_holder"
	RoleAdmin           = "admin"
)

// Roles are the assignable account roles.
var Roles = []string{RoleUser, RoleInventoryHolder, RoleAdmin}

// Account approval statuses.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// AccountStatuses are the approval states of an account.
var AccountStatuses = []string{StatusPending, StatusApproved, StatusRejected}

// Option is a value/label pair offered to clients.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Designations lists the designation options offered per cadre. The server
// stores designation as free text; this list only feeds clients.
var Designations = map[string][]Option{
	"drds": {
		{"sci-h", "SCI-H"}, {"sci-g", "SCI-G"}, {"sci-f", "SCI-F"}, {"sci-e", "SCI-E"},
		{"sci-d", "SCI-D"}, {"sci-c", "SCI-C"}, {"sci-b", "SCI-B"},
	},
	"drtc": {
		{"to-d", "TO-D"}, {"to-c", "TO-C"}, {"to-b", "TO-B"}, {"to-a", "TO-A"}, {"sta-b", "STA-B"},
	},
	"admin": {
		{"cao", "CAO"}, {"ao-ii", "AO-II"}, {"ao", "AO"}, {"sso", "SSO"}, {"so-ii", "SO-II"}, {"so", "SO"},
	},
}

// IsGroup reports whether s is a known group.
func IsGroup(s string) bool { return slices.Contains(Groups, s) }

// IsUnit reports whether s is a known unit.
func IsUnit(s string) bool { return slices.Contains(Units, s) }

// IsCadre reports whether s is a known cadre.
func IsCadre(s string) bool { return slices.Contains(Cadres, s) }

// IsEmploymentType reports whether s is a known employment type.
func IsEmploymentType(s string) bool { return slices.Contains(EmploymentTypes, s) }

// IsGender reports whether s is a known gender.
func IsGender(s string) bool { return slices.Contains(Genders, s) }

// IsRole reports whether s is a known role.
func IsRole(s string) bool { return slices.Contains(Roles, s) }

// IsAccountStatus reports whether s is a known account status.
func IsAccountStatus(s string) bool { return slices.Contains(AccountStatuses, s) }

// Snapshot is the JSON shape served to clients.
type Snapshot struct {
	Groups          []string            `json:"groups"`
	Units           []string            `json:"units"`
	Cadres          []string            `json:"cadres"`
	EmploymentTypes []string            `json:"employmentTypes"`
	Genders         []string            `json:"genders"`
	Designations    map[string][]Option `json:"designations"`
	Roles           []string            `json:"roles"`
}

// Current returns the catalog as a Snapshot.
func Current() Snapshot {
	return Snapshot{
		Groups:          Groups,
		Units:           Units,
		Cadres:          Cadres,
		EmploymentTypes: EmploymentTypes,
		Genders:         Genders,
		Designations:    Designations,
		Roles:           Roles,
	}
}
