/*
Package ldap maps directory users and groups to and from LDAP entries.

# Tree Layout

A Mapper places entities below a base DN:

	uid=<user id>,ou=people,<base DN>
	cn=<group name>,ou=groups,<base DN>

The organizational units are configurable through MapperConfig. DNs are
compared after normalization, so attribute types and values match
case-insensitively.

# Entry Attributes

Users carry uid, cn, mail, displayName, entryUUID and createTimestamp.
memberOf is present only when the user's groups were fetched; an empty
memberOf means the user belongs to no group. The avatar attribute is written
as raw jpegPhoto bytes, and first_name and last_name become givenName and sn.
Other schema attributes keep their schema name and transport text.

Groups carry cn, displayName, gidNumber, entryUUID, createTimestamp and one
uniqueMember per member.

# Error Handling

Conversion failures are returned as *EntryError with a category:

  - naming: malformed DN or entry outside the expected branch
  - not_found: required attribute missing
  - validation: attribute value rejected
  - unknown: anything else

Validation errors from the domain package stay reachable through errors.Is
and errors.As.
*/
package ldap
