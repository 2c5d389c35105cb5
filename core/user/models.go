package user

import (
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/newrise0410/piano-academy-app-sub002/core"
)

// Roles. A teacher owns an academy tenant; a parent is linked to one or more
// students of a tenant.
const (
	RoleTeacher = "teacher"
	RoleParent  = "parent"
)

var AllRoles = []string{RoleTeacher, RoleParent}

type User struct {
	ID           string    `json:"id" bson:"_id,omitempty"`
	Name         string    `json:"name" bson:"name"`
	Email        string    `json:"email" bson:"email"`
	Phone        string    `json:"phone,omitempty" bson:"phone,omitempty"`
	Role         string    `json:"role" bson:"role"`
	IsActive     bool      `json:"isActive" bson:"isActive"`
	PasswordHash []byte    `json:"-" bson:"passwordHash"`
	// ChildStudentIDs links a parent to their students; empty for teachers.
	ChildStudentIDs []string  `json:"childStudentIds,omitempty" bson:"childStudentIds,omitempty"`
	PushToken       string    `json:"-" bson:"pushToken,omitempty"`
	AcademyName     string    `json:"academyName,omitempty" bson:"academyName,omitempty"`
	CreatedAt       time.Time `json:"createdAt" bson:"createdAt"` // UTC
	UpdatedAt       time.Time `json:"updatedAt" bson:"updatedAt"` // UTC
	LastLogin       time.Time `json:"lastLogin" bson:"lastLogin"` // UTC
}

func (u *User) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

func (u *User) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(pwd))
}

func (u *User) IsTeacher() bool { return u.Role == RoleTeacher }
func (u *User) IsParent() bool  { return u.Role == RoleParent }

// NewUser contains information needed to register a User. Registration
// creates the auth identity and its mirrored profile document together.
type NewUser struct {
	Name            string   `json:"name" validate:"required"`
	Email           string   `json:"email" validate:"required,email"`
	Phone           string   `json:"phone"`
	Password        string   `json:"password" validate:"required,min=8"`
	PasswordConfirm string   `json:"passwordConfirm" validate:"required,eqfield=Password"`
	Role            string   `json:"role" validate:"required,oneof=teacher parent"`
	ChildStudentIDs []string `json:"childStudentIds"`
	AcademyName     string   `json:"academyName"`
}

func (nu *NewUser) Validate(svc *Service) error {
	nu.Name = core.CleanString(nu.Name)
	nu.Email = core.CleanString(nu.Email, true /* lower */)

	if err := core.Validate.Struct(nu); err != nil {
		return err
	}
	return svc.checkUniqueness(nu.Email)
}

// UpdateUser carries a profile patch with merge semantics: zero fields keep
// their current values.
type UpdateUser struct {
	Name            string   `json:"name"`
	Email           string   `json:"email" validate:"omitempty,email"`
	Phone           string   `json:"phone"`
	AcademyName     string   `json:"academyName"`
	ChildStudentIDs []string `json:"childStudentIds"`
	IsActive        *bool    `json:"isActive"`
	PushToken       string   `json:"-"`
}

func (uu *UpdateUser) Validate(origUsr User, svc *Service) error {
	uu.Name = core.CleanString(uu.Name)

	email := core.CleanString(uu.Email, true /* lower */)
	if email != "" && email != origUsr.Email {
		uu.Email = email
		if err := core.Validate.Struct(uu); err != nil {
			return err
		}
		return svc.checkUniqueness(uu.Email, origUsr)
	}
	uu.Email = ""
	return core.Validate.Struct(uu)
}

type ChangePassword struct {
	OldPassword     string `json:"oldPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=8"`
	PasswordConfirm string `json:"passwordConfirm" validate:"required,eqfield=NewPassword"`
}

func (cp ChangePassword) Validate() error { return core.Validate.Struct(cp) }

type ResetUserPassword struct {
	Token           string `json:"token" validate:"required"`
	UID             string `json:"uid" validate:"required"`
	Password        string `json:"password" validate:"required,min=8"`
	PasswordConfirm string `json:"passwordConfirm" validate:"required,eqfield=Password"`
}

func (rp ResetUserPassword) Validate() error { return core.Validate.Struct(rp) }
