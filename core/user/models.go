package user

import (
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/Adeanak/web-pendidikanalhikmahfix-sub000/core"
)

type User struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Username     string     `json:"username"`
	Email        string     `json:"email"`
	Role         Role       `json:"role"`
	IsActive     bool       `json:"is_active"`
	PasswordHash []byte     `json:"-"`
	CreatedAt    time.Time  `json:"created_at"` // UTC
	UpdatedAt    time.Time  `json:"updated_at"` // UTC
	LastLogin    *time.Time `json:"last_login"` // UTC
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

// Identity returns the session view of the user.
func (u User) Identity() *Identity {
	return &Identity{ID: u.ID, Name: u.Name, Role: u.Role}
}

func (u User) Capabilities() []Capability {
	caps, err := CapabilitiesFor(u.Role)
	if err != nil {
		return []Capability{}
	}
	return caps.Slice()
}

// NewUser contains information needed by an admin to create an active User.
type NewUser struct {
	Name            string `json:"name" validate:"required,notblank"`
	Username        string `json:"username" validate:"required,min=4,max=150,alphanum_"`
	Email           string `json:"email" validate:"omitempty,email"`
	Role            Role   `json:"role" validate:"required,role"`
	Password        string `json:"password" validate:"required"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
}

func (nu *NewUser) Clean() {
	nu.Name = core.CleanString(nu.Name)
	nu.Username = core.CleanString(nu.Username, true /* lower */)
	nu.Email = core.CleanString(nu.Email, true /* lower */)
}

// Registration is a self-service sign-up. The account stays inactive until a super admin approves it.
type Registration struct {
	Name            string `json:"name" validate:"required,notblank"`
	Username        string `json:"username" validate:"required,min=4,max=150,alphanum_"`
	Email           string `json:"email" validate:"required,email"`
	Role            Role   `json:"role" validate:"omitempty,selfrole"`
	Password        string `json:"password" validate:"required"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
}

func (r *Registration) Clean() {
	r.Name = core.CleanString(r.Name)
	r.Username = core.CleanString(r.Username, true /* lower */)
	r.Email = core.CleanString(r.Email, true /* lower */)
	if r.Role == "" {
		r.Role = RoleParent
	}
}

// UpdateUser defines what information may be provided to modify an existing User.
type UpdateUser struct {
	Name            string `json:"name"`
	Email           string `json:"email" validate:"omitempty,email"`
	Role            Role   `json:"role" validate:"omitempty,role"`
	Password        string `json:"password" validate:"omitempty"`
	PasswordConfirm string `json:"password_confirm" validate:"required_with=Password,eqfield=Password"`

	username string // for the password similarity check
}

func (uu *UpdateUser) Clean(orig User) {
	if name := core.CleanString(uu.Name); name != "" {
		uu.Name = name
	} else {
		uu.Name = orig.Name
	}
	if email := core.CleanString(uu.Email, true /* lower */); email != "" {
		uu.Email = email
	} else {
		uu.Email = orig.Email
	}
	if uu.Role == "" {
		uu.Role = orig.Role
	}
	uu.username = orig.Username
}

// ApproveUser activates a registered account, optionally granting another role.
type ApproveUser struct {
	Role Role `json:"role" validate:"omitempty,role"`
}

type GetFilter struct {
	ID              string
	UsernameOrEmail string
}

type QueryFilter struct {
	Search   string `query:"search"`
	Roles    []Role `query:"role"`
	IsActive *bool  `query:"is_active"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.Search == "" && qf.Roles == nil && qf.IsActive == nil
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
}
