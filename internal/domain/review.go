package domain

import (
	"time"
)

// Rating bounds.
const (
	MinRating = 1
	MaxRating = 5
)

// ReviewUser is the reviewer as shown next to the review. ID is the identity
// key; the other fields are display data and may change between reviews.
// Reviews are served to anonymous readers, so no contact details are kept.
type ReviewUser struct {
	ID     string `json:"_id"`
	Name   string `json:"name,omitempty"`
	Avatar string `json:"avatar,omitempty"`
}

// Review is one user's rating of a product.
type Review struct {
	User      ReviewUser `json:"user"`
	Rating    int        `json:"rating"`
	Comment   string     `json:"comment"`
	ProductID string     `json:"productId"`
	CreatedAt time.Time  `json:"createdAt"`
}

// ValidRating reports whether r lies within the accepted bounds.
func ValidRating(r int) bool {
	return r >= MinRating && r <= MaxRating
}

// UpsertReview replaces the review of the same user in place, keeping its
// position and original CreatedAt, or appends r when the user has not
// reviewed the product yet. Users are matched by ID only. It reports
// whether an existing review was replaced.
func (p *Product) UpsertReview(r Review) bool {
	for i := range p.Reviews {
		if p.Reviews[i].User.ID != r.User.ID {
			continue
		}
		if !p.Reviews[i].CreatedAt.IsZero() {
			r.CreatedAt = p.Reviews[i].CreatedAt
		}
		p.Reviews[i] = r
		return true
	}
	p.Reviews = append(p.Reviews, r)
	return false
}

// RecomputeRatings sets Ratings to the arithmetic mean of the review set,
// or zero when there are no reviews.
func (p *Product) RecomputeRatings() float64 {
	if len(p.Reviews) == 0 {
		p.Ratings = 0
		return 0
	}
	sum := 0
	for _, r := range p.Reviews {
		sum += r.Rating
	}
	p.Ratings = float64(sum) / float64(len(p.Reviews))
	return p.Ratings
}
