// Package leads merges resolved fragments into persisted lead records and
// owns every read and write of the lead mapping.
package leads

import (
	"time"

	"github.com/sells-group/seo-leads/internal/model"
)

// Merge reconciles a freshly resolved fragment with the stored record for
// origin. Non-empty fresh values win; otherwise the old value is kept.
// dateCaptured is set once and dateUpdated is always today.
func Merge(old *model.Lead, fresh model.Fragment, origin string, now time.Time) model.Lead {
	today := model.Today(now)

	base := model.Lead{Website: origin, DateCaptured: today}
	if old != nil {
		base = *old
		if base.Website == "" {
			base.Website = origin
		}
		if base.DateCaptured == "" {
			base.DateCaptured = today
		}
	}

	return model.Lead{
		Website:      base.Website,
		Name:         prefer(fresh.Name, base.Name),
		Email:        prefer(fresh.Email, base.Email),
		Phone:        prefer(fresh.Phone, base.Phone),
		Address:      prefer(fresh.Address, base.Address),
		Country:      prefer(fresh.Country, base.Country),
		City:         prefer(fresh.City, base.City),
		Zip:          prefer(fresh.Zip, base.Zip),
		Facebook:     prefer(fresh.Facebook, base.Facebook),
		Instagram:    prefer(fresh.Instagram, base.Instagram),
		Twitter:      prefer(fresh.Twitter, base.Twitter),
		LinkedIn:     prefer(fresh.LinkedIn, base.LinkedIn),
		YouTube:      prefer(fresh.YouTube, base.YouTube),
		DateCaptured: base.DateCaptured,
		DateUpdated:  today,
	}
}

func prefer(fresh, old string) string {
	if fresh != "" {
		return fresh
	}
	return old
}
