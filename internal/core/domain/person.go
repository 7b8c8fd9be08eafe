package domain

// PersonRole classifies people known to the system.
type PersonRole string

const (
	PersonAdmin    PersonRole = "ADMIN"
	PersonUser     PersonRole = "USER"
	PersonDriver   PersonRole = "DRIVER"
	PersonCustomer PersonRole = "CUSTOMER"
)

// ParsePersonRole maps a wire string to a PersonRole, defaulting to USER.
func ParsePersonRole(s string) PersonRole {
	switch PersonRole(s) {
	case PersonAdmin, PersonDriver, PersonCustomer, PersonUser:
		return PersonRole(s)
	default:
		return PersonUser
	}
}

// Person is a customer, driver or staff member referenced by orders.
type Person struct {
	ID      int64      `json:"personId" db:"person_id"`
	Name    string     `json:"name" db:"name"`
	Role    PersonRole `json:"role" db:"role"`
	Deleted bool       `json:"deleted" db:"deleted"`
}
