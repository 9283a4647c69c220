package domain

import (
	"time"
)

// Image is one entry of a product's ordered image set. PublicID is the
// uploader's identifier, or an "image-<n>" placeholder for imported rows.
type Image struct {
	PublicID string `json:"public_id" validate:"required"`
	URL      string `json:"url" validate:"required"`
}

// Product is a catalog entry owned by a shop. Prices are minor currency
// units. Shop is a snapshot taken at creation time and is never refreshed.
type Product struct {
	ID            string       `json:"id"`
	ShopID        string       `json:"shopId" validate:"required"`
	Shop          ShopSnapshot `json:"shop"`
	Name          string       `json:"name" validate:"required"`
	Description   string       `json:"description" validate:"required"`
	ProductDetail string       `json:"productDetail,omitempty"`
	Category      string       `json:"category" validate:"required"`
	Color         string       `json:"color,omitempty"`
	Size          string       `json:"size,omitempty"`
	Tags          []string     `json:"tags"`
	OriginalPrice int64        `json:"originalPrice" validate:"gte=0"`
	DiscountPrice int64        `json:"discountPrice" validate:"gt=0"`
	Stock         int          `json:"stock" validate:"gte=0"`
	Images        []Image      `json:"images" validate:"min=1,dive"`
	Reviews       []Review     `json:"reviews"`
	Ratings       float64      `json:"ratings"`
	SoldOut       int          `json:"sold_out"`
	CreatedAt     time.Time    `json:"createdAt"`
	UpdatedAt     time.Time    `json:"updatedAt"`
}

// PrimaryImage returns the first image, if any.
func (p *Product) PrimaryImage() (Image, bool) {
	if len(p.Images) == 0 {
		return Image{}, false
	}
	return p.Images[0], true
}

// ImagePublicIDs returns the identifiers of every image in order.
func (p *Product) ImagePublicIDs() []string {
	ids := make([]string, 0, len(p.Images))
	for _, img := range p.Images {
		ids = append(ids, img.PublicID)
	}
	return ids
}

// ProductFilter selects a page of the global listing.
type ProductFilter struct {
	Page    int
	PerPage int
}
