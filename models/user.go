package models

// User is the administrator account. The ledger is single-operator: there is
// exactly one user, configured at startup, but the model keeps credential
// handling explicit instead of ambient.
type User struct {
	// Username is the unique login identifier.
	Username string `json:"username"`

	// Name is the display name shown to the operator.
	Name string `json:"nombre"`

	// PasswordHash is the bcrypt hash of the password.
	// It is never exposed via JSON.
	PasswordHash string `json:"-"`
}
