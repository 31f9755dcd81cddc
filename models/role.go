package models

// Роли пользователей. Администратор управляет пользователями, обычный
// пользователь видит только свои счета и транзакции.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// ValidRole reports whether name is a role the API knows about.
func ValidRole(name string) bool {
	return name == RoleUser || name == RoleAdmin
}
