package domain

// Password match indicator texts shown by the registration form.
const (
	PasswordsMatch    = "Passwords match"
	PasswordsMismatch = "Passwords do not match"
)

// User is the account profile returned by the auth endpoints.
type User struct {
	ID          string `json:"_id,omitempty"`
	Name        string `json:"name"`
	LastName    string `json:"lastName,omitempty"`
	Email       string `json:"email"`
	Phone       string `json:"phone,omitempty"`
	Role        string `json:"role"`
	CompanyName string `json:"companyName,omitempty"`
}

// PasswordMatch returns the indicator text for a password pair, or "" when
// there is nothing to compare yet.
func PasswordMatch(password, confirm string) string {
	if confirm == "" {
		return ""
	}
	if password == confirm {
		return PasswordsMatch
	}
	return PasswordsMismatch
}
