package apify

import (
	"net/http"
	"regexp"
	"strconv"
)

// ResourceKind tells the two locator shapes apart.
type ResourceKind int

const (
	// ResourceKindID is an opaque 17 character platform ID.
	ResourceKindID ResourceKind = iota + 1
	// ResourceKindName is an owner/name pair.
	ResourceKindName
)

// ResourceIDLength is the length of an opaque platform ID.
const ResourceIDLength = 17

var (
	resourceIDPattern   = regexp.MustCompile(`^[a-zA-Z0-9]{` + strconv.Itoa(ResourceIDLength) + `}$`)
	resourceNamePattern = regexp.MustCompile(`^([a-zA-Z0-9._-]+)/([a-zA-Z0-9._-]+)$`)
)

// ResourceID addresses a single platform resource either by ID or by owner/name.
// The zero value is not a valid locator; use ParseResourceID.
type ResourceID struct {
	kind  ResourceKind
	id    string
	owner string
	name  string
}

// ParseResourceID classifies raw as an ID or an owner/name pair.
func ParseResourceID(raw string) (ResourceID, error) {
	if resourceIDPattern.MatchString(raw) {
		return ResourceID{kind: ResourceKindID, id: raw}, nil
	}

	if m := resourceNamePattern.FindStringSubmatch(raw); m != nil {
		return ResourceID{kind: ResourceKindName, owner: m[1], name: m[2]}, nil
	}

	return ResourceID{}, &ValidationError{Kind: ValidationInvalidResourceIdentifier, Value: raw}
}

// Kind returns which shape the locator has.
func (r ResourceID) Kind() ResourceKind { return r.kind }

// ID returns the opaque ID, empty for owner/name locators.
func (r ResourceID) ID() string { return r.id }

// Owner returns the owner part of an owner/name locator.
func (r ResourceID) Owner() string { return r.owner }

// Name returns the name part of an owner/name locator.
func (r ResourceID) Name() string { return r.name }

// IsZero reports whether r was never parsed.
func (r ResourceID) IsZero() bool { return r.kind == 0 }

// String renders the locator as a URL path segment: the ID verbatim, or owner~name.
func (r ResourceID) String() string {
	if r.kind == ResourceKindName {
		return r.owner + "~" + r.name
	}

	return r.id
}

// RequiresToken reports whether a request with the given method against this
// resource must be authenticated. Named resources are private to their owner,
// so reading them needs a token while reading by ID does not. Writes always do.
func (r ResourceID) RequiresToken(method string) bool {
	if method == http.MethodGet {
		return r.kind == ResourceKindName
	}

	return true
}
