package mockdb

import (
	"context"
	"time"

	"github.com/newrise0410/piano-academy-app-sub002/core/user"
)

type userRepository struct {
	db *DB
}

func NewUserRepository(db *DB) user.Repository {
	return &userRepository{db: db}
}

func (repo *userRepository) CheckEmailUniqueness(ctx context.Context, email string, excludedUsers ...user.User) error {
	if err := repo.db.sleep(ctx); err != nil {
		return err
	}
	t := repo.db.user
	t.mutex.RLock()
	defer t.mutex.RUnlock()

	for _, usr := range t.table {
		if usr.Email != email {
			continue
		}
		if !userExcluded(*usr, excludedUsers) {
			return user.ErrEmailExists
		}
	}
	return nil
}

func (repo *userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	if err := repo.db.sleep(ctx); err != nil {
		return user.User{}, err
	}
	t := repo.db.user
	t.mutex.Lock()
	defer t.mutex.Unlock()

	usr.ID = nextID("usr")
	t.table[usr.ID] = &usr
	return usr, nil
}

func (repo *userRepository) QueryAllUsers(ctx context.Context) ([]user.User, error) {
	if err := repo.db.sleep(ctx); err != nil {
		return nil, err
	}
	t := repo.db.user
	t.mutex.RLock()
	defer t.mutex.RUnlock()

	users := make([]user.User, 0, len(t.table))
	for _, usr := range t.table {
		users = append(users, *usr)
	}
	return users, nil
}

func (repo *userRepository) GetUserByID(ctx context.Context, id string) (user.User, error) {
	if err := repo.db.sleep(ctx); err != nil {
		return user.User{}, err
	}
	t := repo.db.user
	t.mutex.RLock()
	defer t.mutex.RUnlock()

	if usr, ok := t.table[id]; ok {
		return *usr, nil
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) GetUserByEmail(ctx context.Context, email string) (user.User, error) {
	if err := repo.db.sleep(ctx); err != nil {
		return user.User{}, err
	}
	t := repo.db.user
	t.mutex.RLock()
	defer t.mutex.RUnlock()

	for _, usr := range t.table {
		if usr.Email == email {
			return *usr, nil
		}
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) UpdateUser(ctx context.Context, id string, up user.UpdateUser) (user.User, error) {
	if err := repo.db.sleep(ctx); err != nil {
		return user.User{}, err
	}
	t := repo.db.user
	t.mutex.Lock()
	defer t.mutex.Unlock()

	usr, ok := t.table[id]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	// only save set fields
	if up.Name != "" {
		usr.Name = up.Name
	}
	if up.Email != "" {
		usr.Email = up.Email
	}
	if up.Phone != "" {
		usr.Phone = up.Phone
	}
	if up.AcademyName != "" {
		usr.AcademyName = up.AcademyName
	}
	if up.ChildStudentIDs != nil {
		usr.ChildStudentIDs = up.ChildStudentIDs
	}
	if up.IsActive != nil {
		usr.IsActive = *up.IsActive
	}
	if up.PushToken != "" {
		usr.PushToken = up.PushToken
	}
	usr.UpdatedAt = time.Now().UTC()
	return *usr, nil
}

func (repo *userRepository) SetUserPassword(ctx context.Context, id string, hash []byte) error {
	if err := repo.db.sleep(ctx); err != nil {
		return err
	}
	t := repo.db.user
	t.mutex.Lock()
	defer t.mutex.Unlock()

	usr, ok := t.table[id]
	if !ok {
		return user.ErrNotFound
	}
	usr.PasswordHash = hash
	usr.UpdatedAt = time.Now().UTC()
	return nil
}

func (repo *userRepository) SetLastLogin(ctx context.Context, id string, at time.Time) (user.User, error) {
	if err := repo.db.sleep(ctx); err != nil {
		return user.User{}, err
	}
	t := repo.db.user
	t.mutex.Lock()
	defer t.mutex.Unlock()

	usr, ok := t.table[id]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	usr.LastLogin = at
	return *usr, nil
}

func (repo *userRepository) DeleteUser(ctx context.Context, id string) error {
	if err := repo.db.sleep(ctx); err != nil {
		return err
	}
	t := repo.db.user
	t.mutex.Lock()
	defer t.mutex.Unlock()

	if _, ok := t.table[id]; !ok {
		return user.ErrNotFound
	}
	delete(t.table, id)
	return nil
}

func userExcluded(usr user.User, excludedUsers []user.User) bool {
	for _, ex := range excludedUsers {
		if ex.ID == usr.ID {
			return true
		}
	}
	return false
}
