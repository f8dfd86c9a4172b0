// Package policy decides what an account may do. Identity storage stays in
// models; everything here is a pure function of the loaded records.
package policy

import "github.com/pageza/foodgram/backend/internal/models"

// Role is the authorization role derived from an account.
type Role string

const (
	Admin  Role = "admin"
	Member Role = "member"
)

// RoleOf folds the stored role and the staff/superuser flags into one role.
func RoleOf(u *models.User) Role {
	if u == nil {
		return Member
	}
	if u.Role == models.RoleAdmin || u.IsStaff || u.IsSuperuser {
		return Admin
	}
	return Member
}

// CanWrite reports whether the account may create content at all.
func CanWrite(u *models.User) bool {
	return u != nil && u.IsActive
}

// CanMutateRecipe allows the author and administrators to change or delete a recipe.
func CanMutateRecipe(u *models.User, r *models.Recipe) bool {
	if !CanWrite(u) || r == nil {
		return false
	}
	if RoleOf(u) == Admin {
		return true
	}
	return r.AuthorID != nil && *r.AuthorID == u.ID
}

// CanManageCatalog allows administrators to edit ingredients and tags.
func CanManageCatalog(u *models.User) bool {
	return CanWrite(u) && RoleOf(u) == Admin
}
