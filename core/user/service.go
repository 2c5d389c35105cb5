package user

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"time"

	"github.com/newrise0410/piano-academy-app-sub002/core"
)

var (
	// errors
	ErrNotFound           = errors.New("user not found")
	ErrEmailExists        = errors.New("a user with this email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountDeactivated = errors.New("account deactivated")
)

// Storage-adapter key for a parent's currently selected child.
const selectedChildKeyPrefix = "selectedChild:"

type (
	Repository interface {
		CheckEmailUniqueness(ctx context.Context, email string, excludedUsers ...User) error
		CreateUser(ctx context.Context, usr User) (User, error)
		QueryAllUsers(ctx context.Context) ([]User, error)
		GetUserByID(ctx context.Context, id string) (User, error)
		GetUserByEmail(ctx context.Context, email string) (User, error)
		// UpdateUser applies merge semantics: zero fields keep their values.
		UpdateUser(ctx context.Context, id string, up UpdateUser) (User, error)
		SetUserPassword(ctx context.Context, id string, hash []byte) error
		SetLastLogin(ctx context.Context, id string, t time.Time) (User, error)
		DeleteUser(ctx context.Context, id string) error
	}

	// Keeper is the slice of the storage adapter the auth layer needs
	// (selected-child persistence).
	Keeper interface {
		Get(ctx context.Context, key string) (string, error)
		Set(ctx context.Context, key, value string) error
		Remove(ctx context.Context, key string) error
	}

	Service struct {
		repo    Repository
		mailSvc core.EmailService
		keeper  Keeper
		conf    *core.Config
	}
)

func NewService(repo Repository, mailSvc core.EmailService, keeper Keeper, conf *core.Config) *Service {
	return &Service{repo: repo, mailSvc: mailSvc, keeper: keeper, conf: conf}
}

func (svc *Service) checkUniqueness(email string, exclUsers ...User) error {
	if err := svc.repo.CheckEmailUniqueness(context.Background(), email, exclUsers...); err != nil {
		if errors.Is(err, ErrEmailExists) {
			return core.NewValidationError(err, core.FieldError{Field: "email", Error: err.Error()})
		}
		return err
	}
	return nil
}

// Register creates the auth identity and its mirrored profile document.
func (svc *Service) Register(ctx context.Context, nu NewUser) (User, error) {
	if err := nu.Validate(svc); err != nil {
		return User{}, err
	}

	now := time.Now().UTC()
	usr := User{
		Name:            nu.Name,
		Email:           nu.Email,
		Phone:           nu.Phone,
		Role:            nu.Role,
		IsActive:        true,
		ChildStudentIDs: nu.ChildStudentIDs,
		AcademyName:     nu.AcademyName,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := usr.SetPassword(nu.Password); err != nil {
		return User{}, err
	}
	return svc.repo.CreateUser(ctx, usr)
}

// Authenticate verifies credentials and stamps the last login.
func (svc *Service) Authenticate(ctx context.Context, email, password string) (User, error) {
	usr, err := svc.repo.GetUserByEmail(ctx, core.CleanString(email, true /* lower */))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return User{}, ErrInvalidCredentials
		}
		return User{}, err
	}
	if err = usr.CheckPassword(password); err != nil {
		return User{}, ErrInvalidCredentials
	}
	if !usr.IsActive {
		return User{}, ErrAccountDeactivated
	}
	return svc.repo.SetLastLogin(ctx, usr.ID, time.Now().UTC())
}

func (svc *Service) QueryAll(ctx context.Context) ([]User, error) {
	return svc.repo.QueryAllUsers(ctx)
}

func (svc *Service) GetByID(ctx context.Context, id string) (User, error) {
	return svc.repo.GetUserByID(ctx, id)
}

func (svc *Service) GetByEmail(ctx context.Context, email string) (User, error) {
	return svc.repo.GetUserByEmail(ctx, core.CleanString(email, true /* lower */))
}

// UpdateProfile applies a merge patch to the profile document.
func (svc *Service) UpdateProfile(ctx context.Context, id string, uu UpdateUser) (User, error) {
	origUsr, err := svc.repo.GetUserByID(ctx, id)
	if err != nil {
		return User{}, err
	}
	if err = uu.Validate(origUsr, svc); err != nil {
		return User{}, err
	}
	return svc.repo.UpdateUser(ctx, id, uu)
}

func (svc *Service) ChangePassword(ctx context.Context, id string, cp ChangePassword) error {
	if err := cp.Validate(); err != nil {
		return err
	}
	usr, err := svc.repo.GetUserByID(ctx, id)
	if err != nil {
		return err
	}
	if err = usr.CheckPassword(cp.OldPassword); err != nil {
		return core.NewValidationError(errors.New("wrong password"),
			core.FieldError{Field: "oldPassword", Error: "wrong password"})
	}
	if err = usr.SetPassword(cp.NewPassword); err != nil {
		return err
	}
	return svc.repo.SetUserPassword(ctx, id, usr.PasswordHash)
}

// RequestPasswordReset emails a reset link. An unknown email is not an error
// to the caller; it would leak which addresses exist.
func (svc *Service) RequestPasswordReset(ctx context.Context, email string) error {
	usr, err := svc.repo.GetUserByEmail(ctx, core.CleanString(email, true /* lower */))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		return err
	}

	token, err := svc.MakeToken(usr)
	if err != nil {
		return err
	}
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: usr.Name, Address: usr.Email}},
		Subject:      "Password reset",
		TemplateName: "password-reset",
		ContextData: map[string]string{
			"Name":     usr.Name,
			"AppName":  svc.conf.AppName,
			"ResetURL": fmt.Sprintf("%s/auth/password-reset-confirm?uid=%s&token=%s", svc.conf.APIBaseURL(), EncodeUID(usr), token),
		},
	})
	return nil
}

func (svc *Service) ConfirmPasswordReset(ctx context.Context, rp ResetUserPassword) error {
	if err := rp.Validate(); err != nil {
		return err
	}

	uid, err := decodeUID(rp.UID)
	if err != nil {
		return core.NewValidationError(errInvalidToken, core.FieldError{Field: "uid", Error: errInvalidToken.Error()})
	}
	usr, err := svc.repo.GetUserByID(ctx, uid)
	if err != nil {
		return err
	}
	if err = svc.verifyToken(usr, rp.Token); err != nil {
		return core.NewValidationError(err, core.FieldError{Field: "token", Error: err.Error()})
	}
	if err = usr.SetPassword(rp.Password); err != nil {
		return err
	}
	return svc.repo.SetUserPassword(ctx, usr.ID, usr.PasswordHash)
}

// RegisterPushToken persists a device token against the profile document.
// Absent device capability shows up as an empty token and is a no-op.
func (svc *Service) RegisterPushToken(ctx context.Context, id, token string) error {
	if token == "" {
		return nil
	}
	_, err := svc.repo.UpdateUser(ctx, id, UpdateUser{PushToken: token})
	return err
}

// SelectChild persists a parent's currently selected child in the storage
// adapter.
func (svc *Service) SelectChild(ctx context.Context, parentID, studentID string) error {
	usr, err := svc.repo.GetUserByID(ctx, parentID)
	if err != nil {
		return err
	}
	var linked bool
	for _, id := range usr.ChildStudentIDs {
		if id == studentID {
			linked = true
			break
		}
	}
	if !linked {
		return core.NewValidationError(errors.New("student is not linked to this account"))
	}
	return svc.keeper.Set(ctx, selectedChildKeyPrefix+parentID, studentID)
}

// SelectedChild returns the persisted selection, or the parent's first child
// when none is stored.
func (svc *Service) SelectedChild(ctx context.Context, parentID string) (string, error) {
	if id, err := svc.keeper.Get(ctx, selectedChildKeyPrefix+parentID); err == nil && id != "" {
		return id, nil
	}
	usr, err := svc.repo.GetUserByID(ctx, parentID)
	if err != nil {
		return "", err
	}
	if len(usr.ChildStudentIDs) == 0 {
		return "", nil
	}
	return usr.ChildStudentIDs[0], nil
}

func (svc *Service) Delete(ctx context.Context, id string) error {
	return svc.repo.DeleteUser(ctx, id)
}
