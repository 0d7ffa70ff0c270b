package ldap

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-ldap/ldap/v3"

	"github.com/fgardt/lldap/internal/domain"
	"github.com/fgardt/lldap/internal/logging"
	"github.com/fgardt/lldap/internal/schema"
)

// GeneralizedTimeFormat is the layout of createTimestamp values.
const GeneralizedTimeFormat = "20060102150405Z"

// Layouts accepted when reading createTimestamp.
var generalizedTimeLayouts = []string{
	GeneralizedTimeFormat,
	"20060102150405.0Z",
	"20060102150405.000Z",
}

// LDAP attribute names.
const (
	AttrObjectClass     = "objectClass"
	AttrUID             = "uid"
	AttrCN              = "cn"
	AttrMail            = "mail"
	AttrDisplayName     = "displayName"
	AttrGivenName       = "givenName"
	AttrSurname         = "sn"
	AttrJpegPhoto       = "jpegPhoto"
	AttrEntryUUID       = "entryUUID"
	AttrCreateTimestamp = "createTimestamp"
	AttrMemberOf        = "memberOf"
	AttrUniqueMember    = "uniqueMember"
	AttrGIDNumber       = "gidNumber"
)

var (
	userObjectClasses  = []string{"inetOrgPerson", "posixAccount", "mailAccount", "person"}
	groupObjectClasses = []string{"groupOfUniqueNames", "groupOfNames"}
)

// Schema attributes stored under a standard LDAP attribute name.
var wellKnownUserAttributes = map[string]string{
	schema.AttributeFirstName: AttrGivenName,
	schema.AttributeLastName:  AttrSurname,
}

// Mapper converts users and groups to and from LDAP entries.
type Mapper struct {
	cfg         MapperConfig
	baseDN      string
	peopleDN    string
	groupsDN    string
	userSchema  *schema.Schema
	groupSchema *schema.Schema
	logger      logging.Logger
}

// NewMapper creates a mapper for the tree described by cfg. Custom attributes
// are converted according to the user and group schemas; a nil schema means
// no custom attributes. A nil logger discards output.
func NewMapper(cfg MapperConfig, userSchema, groupSchema *schema.Schema, logger logging.Logger) (*Mapper, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid mapper config: %w", err)
	}

	baseDN, err := NormalizeDN(cfg.BaseDN)
	if err != nil {
		return nil, err
	}

	if userSchema == nil {
		userSchema, _ = schema.NewSchema()
	}
	if groupSchema == nil {
		groupSchema, _ = schema.NewSchema()
	}

	return &Mapper{
		cfg:         cfg,
		baseDN:      baseDN,
		peopleDN:    "ou=" + EscapeDNValue(strings.ToLower(cfg.UserOU)) + "," + baseDN,
		groupsDN:    "ou=" + EscapeDNValue(strings.ToLower(cfg.GroupOU)) + "," + baseDN,
		userSchema:  userSchema,
		groupSchema: groupSchema,
		logger:      logging.OrNop(logger),
	}, nil
}

// UserDN returns the DN of the user id.
func (m *Mapper) UserDN(id domain.UserID) string {
	return AttrUID + "=" + EscapeDNValue(id.String()) + "," + m.peopleDN
}

// GroupDN returns the DN of the group called name.
func (m *Mapper) GroupDN(name string) string {
	return AttrCN + "=" + EscapeDNValue(name) + "," + m.groupsDN
}

// UserIDFromDN extracts the user id from a user DN. Both uid= and cn= leaf
// RDNs are accepted.
func (m *Mapper) UserIDFromDN(dn string) (domain.UserID, error) {
	attrType, value, err := splitLeafDN(dn, m.peopleDN)
	if err != nil {
		return domain.UserID{}, err
	}
	if attrType != AttrUID && attrType != AttrCN {
		return domain.UserID{}, fmt.Errorf("%w: %s in %q", ErrUnexpectedRDN, attrType, dn)
	}
	return domain.NewUserID(value), nil
}

// GroupNameFromDN extracts the group name from a group DN.
func (m *Mapper) GroupNameFromDN(dn string) (string, error) {
	attrType, value, err := splitLeafDN(dn, m.groupsDN)
	if err != nil {
		return "", err
	}
	if attrType != AttrCN && attrType != AttrUID {
		return "", fmt.Errorf("%w: %s in %q", ErrUnexpectedRDN, attrType, dn)
	}
	return value, nil
}

// UserEntry renders a user as an LDAP entry. memberOf is only emitted when
// the groups were fetched.
func (m *Mapper) UserEntry(ug domain.UserAndGroups) (*ldap.Entry, error) {
	u := ug.User
	dn := m.UserDN(u.UserID)

	attrs := map[string][]string{
		AttrObjectClass:     userObjectClasses,
		AttrUID:             {u.UserID.String()},
		AttrCN:              {u.DisplayNameOr(u.UserID.String())},
		AttrEntryUUID:       {u.UUID.String()},
		AttrCreateTimestamp: {u.CreationDate.UTC().Format(GeneralizedTimeFormat)},
	}
	if u.Email != "" {
		attrs[AttrMail] = []string{u.Email}
	}
	if u.DisplayName != nil {
		attrs[AttrDisplayName] = []string{*u.DisplayName}
	}

	if groups, ok := ug.FetchedGroups(); ok {
		memberOf := make([]string, len(groups))
		for i, g := range groups {
			memberOf[i] = m.GroupDN(g.DisplayName)
		}
		attrs[AttrMemberOf] = memberOf
	}

	if err := m.putAttributes(attrs, "user", m.userSchema, u.Attributes); err != nil {
		return nil, NewEntryError("user_to_entry", dn, "", err)
	}

	m.logger.Trace("Built user entry", map[string]any{"dn": dn, "attributes": len(attrs)})
	return ldap.NewEntry(dn, attrs), nil
}

// GroupEntry renders a group as an LDAP entry.
func (m *Mapper) GroupEntry(g domain.Group) (*ldap.Entry, error) {
	dn := m.GroupDN(g.DisplayName)

	members := make([]string, len(g.Users))
	for i, id := range g.Users {
		members[i] = m.UserDN(id)
	}

	attrs := map[string][]string{
		AttrObjectClass:     groupObjectClasses,
		AttrCN:              {g.DisplayName},
		AttrDisplayName:     {g.DisplayName},
		AttrGIDNumber:       {g.ID.String()},
		AttrEntryUUID:       {g.UUID.String()},
		AttrCreateTimestamp: {g.CreationDate.UTC().Format(GeneralizedTimeFormat)},
		AttrUniqueMember:    members,
	}

	if err := m.putAttributes(attrs, "group", m.groupSchema, g.Attributes); err != nil {
		return nil, NewEntryError("group_to_entry", dn, "", err)
	}

	m.logger.Trace("Built group entry", map[string]any{"dn": dn, "members": len(members)})
	return ldap.NewEntry(dn, attrs), nil
}

// UserFromEntry reads a user entry. The returned group names come from
// memberOf and are nil when the entry has no memberOf attribute.
func (m *Mapper) UserFromEntry(e *ldap.Entry) (domain.User, []string, error) {
	const op = "user_from_entry"

	if e == nil {
		return domain.User{}, nil, NewEntryError(op, "", "", errors.New("LDAP entry cannot be nil"))
	}

	id, err := m.UserIDFromDN(e.DN)
	if err != nil {
		return domain.User{}, nil, NewEntryError(op, e.DN, "", err)
	}
	if uid := e.GetEqualFoldAttributeValue(AttrUID); uid != "" && domain.NewUserID(uid) != id {
		return domain.User{}, nil, NewEntryError(op, e.DN, AttrUID,
			fmt.Errorf("%w: uid %q does not match DN", ErrInvalidAttribute, uid))
	}

	created, uuid, attr, err := readIdentity(e)
	if err != nil {
		return domain.User{}, nil, NewEntryError(op, e.DN, attr, err)
	}

	u := domain.User{
		UserID:       id,
		Email:        e.GetEqualFoldAttributeValue(AttrMail),
		CreationDate: created,
		UUID:         uuid,
	}
	if hasAttribute(e, AttrDisplayName) {
		name := e.GetEqualFoldAttributeValue(AttrDisplayName)
		u.DisplayName = &name
	}

	u.Attributes, err = m.readAttributes(e, "user", m.userSchema)
	if err != nil {
		return domain.User{}, nil, err
	}

	var groups []string
	if hasAttribute(e, AttrMemberOf) {
		groups = []string{}
		for _, dn := range e.GetEqualFoldAttributeValues(AttrMemberOf) {
			name, err := m.GroupNameFromDN(dn)
			if err != nil {
				return domain.User{}, nil, NewEntryError(op, e.DN, AttrMemberOf, err)
			}
			groups = append(groups, name)
		}
	}

	return u, groups, nil
}

// GroupFromEntry reads a group entry.
func (m *Mapper) GroupFromEntry(e *ldap.Entry) (domain.Group, error) {
	const op = "group_from_entry"

	if e == nil {
		return domain.Group{}, NewEntryError(op, "", "", errors.New("LDAP entry cannot be nil"))
	}

	name, err := m.GroupNameFromDN(e.DN)
	if err != nil {
		return domain.Group{}, NewEntryError(op, e.DN, "", err)
	}

	rawID := e.GetEqualFoldAttributeValue(AttrGIDNumber)
	if rawID == "" {
		return domain.Group{}, NewEntryError(op, e.DN, AttrGIDNumber, ErrMissingAttribute)
	}
	id, err := strconv.ParseInt(rawID, 10, 32)
	if err != nil {
		return domain.Group{}, NewEntryError(op, e.DN, AttrGIDNumber, fmt.Errorf("%w: %w", ErrInvalidAttribute, err))
	}

	created, uuid, attr, err := readIdentity(e)
	if err != nil {
		return domain.Group{}, NewEntryError(op, e.DN, attr, err)
	}

	g := domain.Group{
		ID:           domain.GroupID(id),
		DisplayName:  name,
		CreationDate: created,
		UUID:         uuid,
	}

	for _, dn := range e.GetEqualFoldAttributeValues(AttrUniqueMember) {
		member, err := m.UserIDFromDN(dn)
		if err != nil {
			return domain.Group{}, NewEntryError(op, e.DN, AttrUniqueMember, err)
		}
		g.Users = append(g.Users, member)
	}

	g.Attributes, err = m.readAttributes(e, "group", m.groupSchema)
	if err != nil {
		return domain.Group{}, err
	}

	return g, nil
}

func readIdentity(e *ldap.Entry) (time.Time, domain.UUID, string, error) {
	rawUUID := e.GetEqualFoldAttributeValue(AttrEntryUUID)
	if rawUUID == "" {
		return time.Time{}, domain.UUID{}, AttrEntryUUID, ErrMissingAttribute
	}
	uuid, err := domain.ParseUUID(rawUUID)
	if err != nil {
		return time.Time{}, domain.UUID{}, AttrEntryUUID, err
	}

	rawCreated := e.GetEqualFoldAttributeValue(AttrCreateTimestamp)
	if rawCreated == "" {
		return time.Time{}, domain.UUID{}, AttrCreateTimestamp, ErrMissingAttribute
	}
	created, err := parseGeneralizedTime(rawCreated)
	if err != nil {
		return time.Time{}, domain.UUID{}, AttrCreateTimestamp, err
	}

	return created, uuid, "", nil
}

func parseGeneralizedTime(s string) (time.Time, error) {
	for _, layout := range generalizedTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q is not a generalized time", ErrInvalidAttribute, s)
}

// ldapName returns the entry attribute name of a schema attribute.
func (m *Mapper) ldapName(entity, name string) string {
	if entity == "user" {
		if strings.EqualFold(name, m.cfg.PhotoAttribute) {
			return AttrJpegPhoto
		}
		if ldapName, ok := wellKnownUserAttributes[strings.ToLower(name)]; ok {
			return ldapName
		}
	}
	return name
}

// putAttributes adds custom attribute values to attrs. Values whose name is
// not in the schema are skipped and logged.
func (m *Mapper) putAttributes(attrs map[string][]string, entity string, s *schema.Schema, values []domain.AttributeValue) error {
	for _, v := range values {
		a, ok := s.Get(v.Name)
		if !ok {
			m.logger.Warn("Skipping attribute without schema entry", map[string]any{
				"entity":    entity,
				"attribute": v.Name,
			})
			continue
		}

		name := m.ldapName(entity, a.Name)

		var text string
		if a.Type == domain.AttributeTypeJpegPhoto {
			photo, err := domain.Decode[domain.JpegPhoto](v.Value)
			if err != nil {
				return domain.Annotate(err, entity, a.Name)
			}
			if photo.IsEmpty() {
				continue
			}
			text = string(photo.Bytes())
		} else {
			var err error
			if text, err = s.Format(v); err != nil {
				return domain.Annotate(err, entity, a.Name)
			}
		}

		if _, reserved := attrs[name]; reserved && !a.IsList {
			return fmt.Errorf("%w: %s would overwrite %s", ErrInvalidAttribute, a.Name, name)
		}
		attrs[name] = append(attrs[name], text)
	}
	return nil
}

// readAttributes collects the schema attributes present on e.
func (m *Mapper) readAttributes(e *ldap.Entry, entity string, s *schema.Schema) ([]domain.AttributeValue, error) {
	var out []domain.AttributeValue
	op := entity + "_from_entry"

	for _, a := range s.Attributes() {
		name := m.ldapName(entity, a.Name)

		if a.Type == domain.AttributeTypeJpegPhoto {
			for _, raw := range e.GetEqualFoldRawAttributeValues(name) {
				photo, err := domain.NewJpegPhoto(raw)
				if err != nil {
					return nil, NewEntryError(op, e.DN, name, domain.Annotate(err, entity, a.Name))
				}
				out = append(out, domain.PhotoAttribute(a.Name, photo))
			}
			continue
		}

		values := e.GetEqualFoldAttributeValues(name)
		if len(values) > 1 && !a.IsList {
			return nil, NewEntryError(op, e.DN, name, fmt.Errorf("%w: %d values for single-valued attribute", ErrInvalidAttribute, len(values)))
		}
		for _, text := range values {
			v, err := s.Parse(a.Name, text)
			if err != nil {
				return nil, NewEntryError(op, e.DN, name, domain.Annotate(err, entity, a.Name))
			}
			out = append(out, v)
		}
	}

	return out, nil
}

func hasAttribute(e *ldap.Entry, name string) bool {
	for _, attr := range e.Attributes {
		if strings.EqualFold(attr.Name, name) {
			return true
		}
	}
	return false
}
