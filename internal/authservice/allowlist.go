package authservice

import "strings"

// AllowList is the immutable set of administrator emails. Matching is case-insensitive.
type AllowList struct {
	emails map[string]struct{}
}

func NewAllowList(emails []string) *AllowList {
	a := &AllowList{emails: make(map[string]struct{}, len(emails))}
	for _, email := range emails {
		email = normalizeEmail(email)
		if email != "" {
			a.emails[email] = struct{}{}
		}
	}
	return a
}

func (a *AllowList) Allowed(email string) bool {
	email = normalizeEmail(email)
	if email == "" {
		return false
	}
	_, ok := a.emails[email]
	return ok
}

func (a *AllowList) Len() int {
	return len(a.emails)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
