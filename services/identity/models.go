package identity

import (
	"time"

	"github.com/google/uuid"
)

// Kind discriminates login identity variants. Email is currently the only
// member; adding e.g. phone or OAuth extends the switch arms in this package
// without touching token or session logic.
type Kind string

const (
	KindEmail Kind = "email"
)

func AllKinds() []Kind {
	return []Kind{KindEmail}
}

func (k Kind) Valid() bool {
	switch k {
	case KindEmail:
		return true
	}
	return false
}

// ClientIdentity is a login identity as submitted by a client, before any
// hashing or persistence.
type ClientIdentity interface {
	Kind() Kind
	Identifier() string
	Secret() string
}

// EmailIdentity is the email+password variant.
type EmailIdentity struct {
	Email    string
	Password string
}

func (e EmailIdentity) Kind() Kind         { return KindEmail }
func (e EmailIdentity) Identifier() string { return e.Email }
func (e EmailIdentity) Secret() string     { return e.Password }

// LoginIdentity is the persisted credential: one row per login method per
// user, carrying the peppered hash and the per-credential salt.
type LoginIdentity struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	UserID       uuid.UUID `json:"user_id" gorm:"type:uuid;not null;uniqueIndex:idx_identity_user_kind"`
	Kind         Kind      `json:"kind" gorm:"size:20;not null;uniqueIndex:idx_identity_user_kind"`
	Identifier   string    `json:"identifier" gorm:"size:255;not null;uniqueIndex"`
	PasswordHash string    `json:"-" gorm:"not null"`
	Salt         string    `json:"-" gorm:"size:64;not null"`
	Verified     bool      `json:"verified" gorm:"default:false"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (LoginIdentity) TableName() string {
	return "login_identities"
}
