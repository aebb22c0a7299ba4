package identity

import "github.com/google/uuid"

// Relation tags how an entity points at the user that owns it. Each entity
// type picks exactly one relation.
type Relation string

const (
	RelationEmployee  Relation = "employee"
	RelationRecipient Relation = "recipient"
	RelationUser      Relation = "user"
)

type Ownership struct {
	Relation Relation
	OwnerID  uuid.UUID
}

type Owned interface {
	Ownership() Ownership
}

func OwnedBy(relation Relation, ownerID uuid.UUID) Ownership {
	return Ownership{Relation: relation, OwnerID: ownerID}
}

// IsOwner reports whether p is the user behind the entity's ownership relation.
func (p Principal) IsOwner(o Owned) bool {
	own := o.Ownership()
	switch own.Relation {
	case RelationEmployee, RelationRecipient, RelationUser:
		return own.OwnerID != uuid.Nil && own.OwnerID == p.UserID
	default:
		return false
	}
}

// AuthorizeOwner allows HR/ADMIN, or the owner of o.
func AuthorizeOwner(p Principal, o Owned) error {
	if p.IsPrivileged() || p.IsOwner(o) {
		return nil
	}
	return ErrNotOwner
}

// AuthorizeStrictOwner allows only the owner, regardless of role.
func AuthorizeStrictOwner(p Principal, o Owned) error {
	if p.IsOwner(o) {
		return nil
	}
	return ErrNotOwner
}
