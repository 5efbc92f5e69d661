package domain

import "time"

// MaxImages is the image limit for services and blog posts.
const MaxImages = 3

// ServiceFields are the writable columns of a security service offering.
type ServiceFields struct {
	NameService      string   `json:"name_service"`
	Description      Text     `json:"description"`
	ShortDescription Text     `json:"short_description"`
	Details          []string `json:"details"`
	ImageURLs        []string `json:"image_urls"`
	IsFeatured       bool     `json:"is_featured"`
}

// Service is a security service offered by the company.
type Service struct {
	ID int64 `json:"id"`
	ServiceFields
	CreatedAt time.Time `json:"created_at"`
}

func (s Service) Key() int64 { return s.ID }

func (s Service) Images() []string { return s.ImageURLs }

// Cover returns the first image or "".
func (s Service) Cover() string {
	if len(s.ImageURLs) == 0 {
		return ""
	}
	return s.ImageURLs[0]
}
