package constants

type contextKey string

const (
	Token    = "token"
	UserID   = "user_id"
	UserRole = "role"

	TokenKey contextKey = "token"
)

const (
	RoleDoctor  = "doctor"
	RolePatient = "patient"
	RoleService = "service"
)
