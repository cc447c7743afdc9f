package validation

import (
	"errors"
	"regexp"
	"strings"
)

var groupSlugRegex = regexp.MustCompile(`^[a-z0-9-]{1,50}$`)

// reservedPathSegments cannot be used as slugs or usernames because they
// collide with top-level routes.
var reservedPathSegments = map[string]struct{}{
	"admin":   {},
	"auth":    {},
	"create":  {},
	"follow":  {},
	"group":   {},
	"health":  {},
	"metrics": {},
	"posts":   {},
	"profile": {},
}

// ValidateGroupSlug validates group slug format and reserved names.
func ValidateGroupSlug(slug string) error {
	if !groupSlugRegex.MatchString(slug) {
		return errors.New("slug must be 1-50 characters and contain only lowercase letters, numbers, and hyphens")
	}
	if strings.HasPrefix(slug, "-") || strings.HasSuffix(slug, "-") {
		return errors.New("slug cannot start or end with a hyphen")
	}
	if _, exists := reservedPathSegments[slug]; exists {
		return errors.New("slug is reserved")
	}
	return nil
}
