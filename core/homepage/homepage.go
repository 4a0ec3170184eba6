// Package homepage manages the storefront landing content: hero
// banners, FAQ entries, service feature blurbs and the curated list of
// featured plans.
package homepage

import "time"

type Banner struct {
	ID        string    `json:"id" db:"banner_id"`
	Title     string    `json:"title" db:"title"`
	ImageURL  string    `json:"imageUrl" db:"image_url"`
	LinkURL   string    `json:"linkUrl" db:"link_url"`
	Position  int       `json:"position" db:"position"`
	Active    bool      `json:"active" db:"active"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

type BannerNew struct {
	Title    string `json:"title" validate:"required"`
	ImageURL string `json:"imageUrl" validate:"required,url"`
	LinkURL  string `json:"linkUrl" validate:"omitempty,url"`
	Position int    `json:"position" validate:"gte=0"`
}

type BannerUp struct {
	Title    *string `json:"title" validate:"omitempty,min=1"`
	ImageURL *string `json:"imageUrl" validate:"omitempty,url"`
	LinkURL  *string `json:"linkUrl" validate:"omitempty,url"`
	Position *int    `json:"position" validate:"omitempty,gte=0"`
	Active   *bool   `json:"active"`
}

type FAQ struct {
	ID        string    `json:"id" db:"faq_id"`
	Question  string    `json:"question" db:"question"`
	Answer    string    `json:"answer" db:"answer"`
	Position  int       `json:"position" db:"position"`
	Active    bool      `json:"active" db:"active"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

type FAQNew struct {
	Question string `json:"question" validate:"required"`
	Answer   string `json:"answer" validate:"required"`
	Position int    `json:"position" validate:"gte=0"`
}

type FAQUp struct {
	Question *string `json:"question" validate:"omitempty,min=1"`
	Answer   *string `json:"answer" validate:"omitempty,min=1"`
	Position *int    `json:"position" validate:"omitempty,gte=0"`
	Active   *bool   `json:"active"`
}

type Feature struct {
	ID        string    `json:"id" db:"feature_id"`
	Title     string    `json:"title" db:"title"`
	Body      string    `json:"body" db:"body"`
	Icon      string    `json:"icon" db:"icon"`
	Position  int       `json:"position" db:"position"`
	Active    bool      `json:"active" db:"active"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

type FeatureNew struct {
	Title    string `json:"title" validate:"required"`
	Body     string `json:"body" validate:"required"`
	Icon     string `json:"icon"`
	Position int    `json:"position" validate:"gte=0"`
}

type FeatureUp struct {
	Title    *string `json:"title" validate:"omitempty,min=1"`
	Body     *string `json:"body" validate:"omitempty,min=1"`
	Icon     *string `json:"icon"`
	Position *int    `json:"position" validate:"omitempty,gte=0"`
	Active   *bool   `json:"active"`
}

// FeaturedNew pins an existing plan onto the landing page.
type FeaturedNew struct {
	ProductID string `json:"productId" validate:"required,uuid4"`
	Position  int    `json:"position" validate:"gte=0"`
}
