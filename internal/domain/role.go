package domain

// Role is the account_type column of an account.
type Role string

const (
	RoleUser       Role = "user"
	RoleSuperuser  Role = "superuser"
	RoleAdmin      Role = "admin"
	RoleSuperadmin Role = "superadmin"
)

// AllRoles lists every valid account type, lowest privilege first.
var AllRoles = []Role{RoleUser, RoleSuperuser, RoleAdmin, RoleSuperadmin}

// AdminRoles may change account types and act on accounts other than their own.
var AdminRoles = []Role{RoleAdmin, RoleSuperadmin}

func (r Role) Valid() bool {
	return r.In(AllRoles...)
}

func (r Role) In(roles ...Role) bool {
	for _, allowed := range roles {
		if r == allowed {
			return true
		}
	}
	return false
}

func (r Role) String() string { return string(r) }
