package domain

import (
	"database/sql/driver"
	"fmt"
	"math"
	"slices"
	"strconv"
	"time"
)

// GroupID is the integer surrogate key of a group.
type GroupID int32

// String returns the decimal form.
func (id GroupID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

// Value implements driver.Valuer.
func (id GroupID) Value() (driver.Value, error) {
	return int64(id), nil
}

// Scan implements sql.Scanner.
func (id *GroupID) Scan(src any) error {
	v, ok := src.(int64)
	if !ok {
		return fmt.Errorf("cannot scan %T into GroupID", src)
	}
	if v < math.MinInt32 || v > math.MaxInt32 {
		return fmt.Errorf("group id %d out of range", v)
	}
	*id = GroupID(v)
	return nil
}

// User is a directory user. Group membership is not part of the record; see
// UserAndGroups.
type User struct {
	UserID       UserID
	Email        string
	DisplayName  *string // nil when unset
	CreationDate time.Time
	UUID         UUID
	Attributes   []AttributeValue
}

// NewUser creates a user created at creationDate, deriving its UUID from the
// user id and that date.
func NewUser(id UserID, email string, creationDate time.Time) User {
	creationDate = creationDate.UTC()
	return User{
		UserID:       id,
		Email:        email,
		CreationDate: creationDate,
		UUID:         UUIDFromNameAndDate(id.String(), creationDate),
	}
}

// WithDisplayName returns a copy of u with the display name set.
func (u User) WithDisplayName(name string) User {
	out := u.Clone()
	out.DisplayName = &name
	return out
}

// WithAttributes returns a copy of u with attrs appended.
func (u User) WithAttributes(attrs ...AttributeValue) User {
	out := u.Clone()
	out.Attributes = append(out.Attributes, attrs...)
	return out
}

// DisplayNameOr returns the display name, or fallback when it is unset.
func (u User) DisplayNameOr(fallback string) string {
	if u.DisplayName == nil {
		return fallback
	}
	return *u.DisplayName
}

// Attribute returns the value of the first attribute called name.
func (u User) Attribute(name string) (Serialized, bool) {
	return findAttribute(u.Attributes, name)
}

// Clone returns a deep copy of u.
func (u User) Clone() User {
	out := u
	if u.DisplayName != nil {
		name := *u.DisplayName
		out.DisplayName = &name
	}
	out.Attributes = slices.Clone(u.Attributes)
	return out
}

// Group is a directory group including its member list.
type Group struct {
	ID           GroupID
	DisplayName  string
	CreationDate time.Time
	UUID         UUID
	Users        []UserID
	Attributes   []AttributeValue
}

// NewGroup creates an empty group created at creationDate, deriving its UUID
// from the display name and that date.
func NewGroup(id GroupID, displayName string, creationDate time.Time) Group {
	creationDate = creationDate.UTC()
	return Group{
		ID:           id,
		DisplayName:  displayName,
		CreationDate: creationDate,
		UUID:         UUIDFromNameAndDate(displayName, creationDate),
	}
}

// WithMembers returns a copy of g with users appended to the member list.
func (g Group) WithMembers(users ...UserID) Group {
	out := g.Clone()
	out.Users = append(out.Users, users...)
	return out
}

// HasMember reports whether id is in the member list.
func (g Group) HasMember(id UserID) bool {
	return slices.Contains(g.Users, id)
}

// Attribute returns the value of the first attribute called name.
func (g Group) Attribute(name string) (Serialized, bool) {
	return findAttribute(g.Attributes, name)
}

// Details projects g without its member list.
func (g Group) Details() GroupDetails {
	return GroupDetails{
		GroupID:      g.ID,
		DisplayName:  g.DisplayName,
		CreationDate: g.CreationDate,
		UUID:         g.UUID,
		Attributes:   slices.Clone(g.Attributes),
	}
}

// Clone returns a deep copy of g.
func (g Group) Clone() Group {
	out := g
	out.Users = slices.Clone(g.Users)
	out.Attributes = slices.Clone(g.Attributes)
	return out
}

// GroupDetails is a group without its members, for listings where enumerating
// membership is unnecessary.
type GroupDetails struct {
	GroupID      GroupID
	DisplayName  string
	CreationDate time.Time
	UUID         UUID
	Attributes   []AttributeValue
}

// Clone returns a deep copy of d.
func (d GroupDetails) Clone() GroupDetails {
	out := d
	out.Attributes = slices.Clone(d.Attributes)
	return out
}

// UserAndGroups pairs a user with the groups it belongs to. GroupsFetched
// distinguishes "groups not loaded" from "loaded, member of none".
type UserAndGroups struct {
	User          User
	Groups        []GroupDetails
	GroupsFetched bool
}

// UserOnly wraps a user whose groups were not loaded.
func UserOnly(u User) UserAndGroups {
	return UserAndGroups{User: u}
}

// NewUserAndGroups wraps a user with its loaded groups. A nil or empty groups
// slice means the user belongs to no group.
func NewUserAndGroups(u User, groups []GroupDetails) UserAndGroups {
	if groups == nil {
		groups = []GroupDetails{}
	}
	return UserAndGroups{User: u, Groups: groups, GroupsFetched: true}
}

// FetchedGroups returns the groups and whether they were loaded.
func (ug UserAndGroups) FetchedGroups() ([]GroupDetails, bool) {
	if !ug.GroupsFetched {
		return nil, false
	}
	return ug.Groups, true
}

// Clone returns a deep copy of ug.
func (ug UserAndGroups) Clone() UserAndGroups {
	out := ug
	out.User = ug.User.Clone()
	if ug.Groups != nil {
		out.Groups = make([]GroupDetails, len(ug.Groups))
		for i, g := range ug.Groups {
			out.Groups[i] = g.Clone()
		}
	}
	return out
}

func findAttribute(attrs []AttributeValue, name string) (Serialized, bool) {
	for _, a := range attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return Serialized{}, false
}
