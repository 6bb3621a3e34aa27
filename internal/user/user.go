package user

import (
	"time"

	errors "github.com/frahmantamala/ngo-platform/internal"
	userDatamodel "github.com/frahmantamala/ngo-platform/internal/core/datamodel/user"
)

var ErrNotFound = errors.NewNotFoundError("User not found", errors.ErrCodeUserNotFound)

// Profile is what an administrator sees about their own account.
type Profile struct {
	ID          int64     `json:"id"`
	Email       string    `json:"email"`
	Name        string    `json:"name"`
	IsActive    bool      `json:"is_active"`
	Permissions []string  `json:"permissions"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (p *Profile) HasPermission(permission string) bool {
	for _, perm := range p.Permissions {
		if perm == permission {
			return true
		}
	}
	return false
}

func (p *Profile) IsAdmin() bool {
	return p.HasPermission(errors.PermissionAdmin)
}

func FromDataModel(u *userDatamodel.User, permissions []string) *Profile {
	if permissions == nil {
		permissions = []string{}
	}
	return &Profile{
		ID:          u.ID,
		Email:       u.Email,
		Name:        u.Name,
		IsActive:    u.IsActive,
		Permissions: permissions,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}
