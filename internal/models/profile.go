package models

// Role enum. The set is closed: registration rejects anything else.
type Role string

const (
	RoleDoctor       Role = "doctor"
	RolePatient      Role = "patient"
	RoleReceptionist Role = "receptionist"
	RolePharmacist   Role = "pharmacist"
	RoleLabTech      Role = "labtech"
)

// Roles lists every recognized role.
var Roles = []Role{RoleDoctor, RolePatient, RoleReceptionist, RolePharmacist, RoleLabTech}

// Valid reports whether the role belongs to the closed set.
func (r Role) Valid() bool {
	for _, role := range Roles {
		if r == role {
			return true
		}
	}
	return false
}

// DashboardPath returns the front-end route a user of this role lands on
// after signing in.
func (r Role) DashboardPath() string {
	switch r {
	case RoleDoctor:
		return "/doctor/dashboard"
	case RolePatient:
		return "/patient/dashboard"
	case RoleReceptionist:
		return "/hospital/dashboard"
	case RolePharmacist:
		return "/pharmacy/dashboard"
	case RoleLabTech:
		return "/lab/dashboard"
	default:
		return "/"
	}
}

// Profile binds an Account to an application role and display name. Exactly
// one Profile exists per Account (unique index on auth_uid); role is
// immutable after creation, there is no role-change operation.
type Profile struct {
	BaseModel
	AuthUID  string `gorm:"column:auth_uid;uniqueIndex;size:36;not null" json:"authUid"`
	Role     Role   `gorm:"size:20;not null" json:"role"`
	FullName string `gorm:"size:255;not null" json:"fullName"`
	Email    string `gorm:"size:255;not null" json:"email"`

	Account Account `gorm:"foreignKey:AuthUID" json:"-"`
}
