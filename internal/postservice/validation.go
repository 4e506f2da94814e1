package postservice

import (
	"strings"
	"time"

	"github.com/sushihentaime/voidfusion/internal/common"
)

const (
	maxTitleLength       = 200
	maxDescriptionLength = 500
)

func validateTitle(v *common.Validator, title string) {
	v.Check(strings.TrimSpace(title) != "", "title", "must be provided")
	v.Check(v.CheckStringLength(title, 0, maxTitleLength), "title", "must not be more than 200 characters long")
}

func validateDescription(v *common.Validator, description string) {
	v.Check(v.CheckStringLength(description, 0, maxDescriptionLength), "description", "must not be more than 500 characters long")
}

func validateContent(v *common.Validator, content string) {
	v.Check(strings.TrimSpace(content) != "", "content", "must be provided")
}

func validateDate(v *common.Validator, date string) {
	if date == "" {
		return
	}
	_, err := time.Parse(time.DateOnly, date)
	v.Check(err == nil, "date", "must be a valid date in YYYY-MM-DD format")
}

// validateSlug checks the slug a post will be stored under. explicit is true when the caller
// supplied it rather than having it derived from the title.
func validateSlug(v *common.Validator, slug string, explicit bool) {
	if explicit {
		v.Check(v.Matches(slug, SlugRX) && len(slug) <= maxSlugLength, "slug", "must contain only lowercase letters, numbers and single hyphens")
		return
	}
	v.Check(slug != "", "title", "must contain at least one letter or number")
	v.Check(len(slug) <= maxSlugLength, "title", "must not be more than 200 characters long")
}
