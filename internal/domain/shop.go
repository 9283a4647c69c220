package domain

import (
	"time"
)

// Shop is a seller account and its public profile.
type Shop struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Description string    `json:"description,omitempty"`
	Address     string    `json:"address"`
	PhoneNumber string    `json:"phoneNumber"`
	ZipCode     string    `json:"zipCode"`
	Role        string    `json:"role"`
	Avatar      Avatar    `json:"avatar"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Avatar is a shop's profile picture. Both fields are empty for shops that
// never uploaded one, so it carries no validation rules.
type Avatar struct {
	PublicID string `json:"public_id"`
	URL      string `json:"url"`
}

// ShopSnapshot is the copy of a shop's profile stored on each product.
type ShopSnapshot struct {
	ID          string    `json:"_id"`
	Name        string    `json:"name"`
	Email       string    `json:"email,omitempty"`
	Description string    `json:"description,omitempty"`
	Address     string    `json:"address,omitempty"`
	PhoneNumber string    `json:"phoneNumber,omitempty"`
	Avatar      Avatar    `json:"avatar"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Snapshot copies the fields of s that products embed.
func (s *Shop) Snapshot() ShopSnapshot {
	return ShopSnapshot{
		ID:          s.ID,
		Name:        s.Name,
		Email:       s.Email,
		Description: s.Description,
		Address:     s.Address,
		PhoneNumber: s.PhoneNumber,
		Avatar:      s.Avatar,
		CreatedAt:   s.CreatedAt,
	}
}

// MonthlyReport summarises a shop's orders in one calendar month.
type MonthlyReport struct {
	ShopID          string    `json:"shopId"`
	From            time.Time `json:"from"`
	To              time.Time `json:"to"`
	TotalOrderCount int       `json:"totalOrdersCount"`
	TotalSales      int64     `json:"totalSales"`
	Shop            *Shop     `json:"shop"`
	Orders          []Order   `json:"orders"`
}

// MonthBounds returns the first instant of t's month and of the next one,
// in t's location.
func MonthBounds(t time.Time) (time.Time, time.Time) {
	start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	return start, start.AddDate(0, 1, 0)
}
