package user

import (
	"context"
	"net/mail"
	"time"

	"github.com/pkg/errors"

	"github.com/Adeanak/web-pendidikanalhikmahfix-sub000/core"
)

var (
	// errors
	ErrNotFound             = core.NewNotFoundError("user")
	ErrEmailExists          = errors.New("a user with this email already exists")
	ErrUsernameExists       = errors.New("a user with this username already exists")
	ErrAuthenticationFailed = errors.New("invalid credentials")
	ErrAccountInactive      = errors.New("account is not active")
	ErrSelfDeactivation     = errors.New("you cannot deactivate your own account")
)

type (
	Repository interface {
		// CheckUniqueness returns ErrUsernameExists or ErrEmailExists when another user than `excludedID` holds them.
		CheckUniqueness(ctx context.Context, username, email string, excludedID ...string) error
		CreateUser(ctx context.Context, usr User) (User, error)
		// QueryUsers applies AND operation on available QueryFilter fields.
		// QueryFilter.Search does a case-insensitive match on one of User.Name, User.Username or User.Email.
		QueryUsers(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]User, error)
		GetUser(ctx context.Context, filter GetFilter) (User, error)
		UpdateUser(ctx context.Context, usr User) (User, error)
	}

	Service struct {
		repo     Repository
		v        *core.Validator
		mailSvc  core.EmailService
		notifier core.Notifier
	}
)

func NewService(repo Repository, v *core.Validator, mailSvc core.EmailService, notifier core.Notifier) *Service {
	InitValidators(v.Engine(), v.Translator())
	return &Service{repo: repo, v: v, mailSvc: mailSvc, notifier: notifier}
}

func (svc *Service) checkUniqueness(ctx context.Context, uname, email string, excludedID ...string) error {
	if err := svc.repo.CheckUniqueness(ctx, uname, email, excludedID...); err != nil {
		var field string
		switch err {
		case ErrUsernameExists:
			field = "username"
		case ErrEmailExists:
			field = "email"
		default:
			return errors.Wrap(err, "checking uniqueness")
		}
		return core.NewValidationError(err, core.FieldError{Field: field, Error: err.Error()})
	}
	return nil
}

func (svc *Service) create(ctx context.Context, usr User, pwd string) (User, error) {
	now := time.Now().UTC()
	usr.CreatedAt = now
	usr.UpdatedAt = now
	if err := usr.SetPassword(pwd); err != nil {
		return User{}, errors.Wrap(err, "hashing password")
	}
	return svc.repo.CreateUser(ctx, usr)
}

// Create adds an active account on behalf of an admin.
func (svc *Service) Create(ctx context.Context, nu NewUser) (User, error) {
	nu.Clean()
	if err := svc.v.Struct(nu); err != nil {
		return User{}, err
	}
	if err := svc.checkUniqueness(ctx, nu.Username, nu.Email); err != nil {
		return User{}, err
	}
	usr := User{Name: nu.Name, Username: nu.Username, Email: nu.Email, Role: nu.Role, IsActive: true}
	return svc.create(ctx, usr, nu.Password)
}

// Register adds an inactive account, pending approval by a super admin.
func (svc *Service) Register(ctx context.Context, reg Registration) (User, error) {
	reg.Clean()
	if err := svc.v.Struct(reg); err != nil {
		return User{}, err
	}
	if err := svc.checkUniqueness(ctx, reg.Username, reg.Email); err != nil {
		return User{}, err
	}
	usr := User{Name: reg.Name, Username: reg.Username, Email: reg.Email, Role: reg.Role, IsActive: false}
	usr, err := svc.create(ctx, usr, reg.Password)
	if err != nil {
		return User{}, err
	}
	svc.notifier.Notify(core.Event{Type: core.EventUserRegistered, ID: usr.ID, Summary: usr.Name + " (" + string(usr.Role) + ")"})
	return usr, nil
}

func (svc *Service) Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]User, error) {
	return svc.repo.QueryUsers(ctx, filter, ordering)
}

func (svc *Service) GetByID(ctx context.Context, id string) (User, error) {
	return svc.repo.GetUser(ctx, GetFilter{ID: id})
}

func (svc *Service) GetByUsernameOrEmail(ctx context.Context, uname string) (User, error) {
	return svc.repo.GetUser(ctx, GetFilter{UsernameOrEmail: core.CleanString(uname, true /* lower */)})
}

// Authenticate checks the credentials of an active account and records the login.
func (svc *Service) Authenticate(ctx context.Context, uname, pwd string) (User, error) {
	usr, err := svc.GetByUsernameOrEmail(ctx, uname)
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return User{}, ErrAuthenticationFailed
		}
		return User{}, errors.Wrap(err, "finding user by username or email")
	}
	if err = usr.CheckPassword(pwd); err != nil {
		return User{}, ErrAuthenticationFailed
	}
	if !usr.IsActive {
		return User{}, ErrAccountInactive
	}

	now := time.Now().UTC()
	usr.LastLogin = &now
	usr, err = svc.repo.UpdateUser(ctx, usr)
	return usr, errors.Wrap(err, "setting lastLogin")
}

func (svc *Service) Update(ctx context.Context, id string, uu UpdateUser) (User, error) {
	usr, err := svc.GetByID(ctx, id)
	if err != nil {
		return User{}, err
	}
	uu.Clean(usr)
	if err = svc.v.Struct(uu); err != nil {
		return User{}, err
	}
	if err = svc.checkUniqueness(ctx, usr.Username, uu.Email, usr.ID); err != nil {
		return User{}, err
	}

	usr.Name = uu.Name
	usr.Email = uu.Email
	usr.Role = uu.Role
	if uu.Password != "" {
		if err = usr.SetPassword(uu.Password); err != nil {
			return User{}, errors.Wrap(err, "hashing password")
		}
	}
	usr.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateUser(ctx, usr)
}

// Approve activates an account, optionally granting another role, and notifies its owner.
func (svc *Service) Approve(ctx context.Context, id string, data ApproveUser) (User, error) {
	if err := svc.v.Struct(data); err != nil {
		return User{}, err
	}
	usr, err := svc.GetByID(ctx, id)
	if err != nil {
		return User{}, err
	}
	if data.Role != "" {
		usr.Role = data.Role
	}
	usr.IsActive = true
	usr.UpdatedAt = time.Now().UTC()
	if usr, err = svc.repo.UpdateUser(ctx, usr); err != nil {
		return User{}, errors.Wrap(err, "activating user")
	}

	if usr.Email != "" {
		svc.mailSvc.SendMessages(&core.EmailMessage{
			To:           []mail.Address{{Name: usr.Name, Address: usr.Email}},
			Subject:      "Akun Anda telah diaktifkan",
			TemplateName: "account_approved",
			TemplateData: usr,
		})
	}
	return usr, nil
}

// Deactivate disables an account. Accounts are never deleted.
func (svc *Service) Deactivate(ctx context.Context, id, actorID string) (User, error) {
	if id == actorID {
		return User{}, core.NewValidationError(ErrSelfDeactivation)
	}
	usr, err := svc.GetByID(ctx, id)
	if err != nil {
		return User{}, err
	}
	usr.IsActive = false
	usr.UpdatedAt = time.Now().UTC()
	usr, err = svc.repo.UpdateUser(ctx, usr)
	return usr, errors.Wrap(err, "deactivating user")
}

// ActiveWith returns the active users whose role grants `capability`.
func (svc *Service) ActiveWith(ctx context.Context, capability Capability) ([]User, error) {
	active := true
	return svc.repo.QueryUsers(ctx, &QueryFilter{Roles: RolesWith(capability), IsActive: &active}, nil)
}
