// Package forward pushes merged lead records to external sync targets.
// Forwarding never feeds back into the stored record.
package forward

import (
	"context"

	"github.com/sells-group/seo-leads/internal/model"
)

// Forwarder delivers one lead record to a sync target.
type Forwarder interface {
	Name() string
	Forward(ctx context.Context, lead model.Lead) error
}

// Labeled is the fixed, human-labeled key set sent to sync targets.
type Labeled struct {
	Website   string `json:"Website"`
	Name      string `json:"Name"`
	Email     string `json:"Email"`
	Phone     string `json:"Phone"`
	Address   string `json:"Address"`
	Country   string `json:"Country"`
	City      string `json:"City"`
	Zip       string `json:"Zip"`
	Facebook  string `json:"Facebook"`
	Instagram string `json:"Instagram"`
	Twitter   string `json:"Twitter X"`
	LinkedIn  string `json:"LinkedIn"`
	YouTube   string `json:"Youtube"`
}

// Label maps a lead onto the labeled key set.
func Label(l model.Lead) Labeled {
	return Labeled{
		Website:   l.Website,
		Name:      l.Name,
		Email:     l.Email,
		Phone:     l.Phone,
		Address:   l.Address,
		Country:   l.Country,
		City:      l.City,
		Zip:       l.Zip,
		Facebook:  l.Facebook,
		Instagram: l.Instagram,
		Twitter:   l.Twitter,
		LinkedIn:  l.LinkedIn,
		YouTube:   l.YouTube,
	}
}
