package ingest

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/daffodeal/marketplace/internal/domain"
)

// Draft is a transformed row. Text fields are carried verbatim; numeric
// columns are converted only by Product.
type Draft struct {
	Row           int            `json:"row"`
	Name          string         `json:"name"`
	Description   string         `json:"description"`
	ProductDetail string         `json:"productDetail"`
	Category      string         `json:"category"`
	Color         string         `json:"color"`
	Size          string         `json:"size"`
	Tags          string         `json:"tags"`
	OriginalPrice string         `json:"originalPrice"`
	DiscountPrice string         `json:"discountPrice"`
	Stock         string         `json:"stock"`
	Images        []domain.Image `json:"images"`
}

// Transform maps a record onto a draft. The Images column is split on commas
// and element i becomes {public_id: "image-<i+1>", url: trimmed URL}. No
// field is validated.
func Transform(rec Record) Draft {
	return Draft{
		Row:           rec.Row,
		Name:          rec.Get(ColName),
		Description:   rec.Get(ColDescription),
		ProductDetail: rec.Get(ColProductDetail),
		Category:      rec.Get(ColCategory),
		Color:         rec.Get(ColColor),
		Size:          rec.Get(ColSize),
		Tags:          rec.Get(ColTags),
		OriginalPrice: rec.Get(ColOriginalPrice),
		DiscountPrice: rec.Get(ColDiscountPrice),
		Stock:         rec.Get(ColStock),
		Images:        placeholderImages(rec.Get(ColImages)),
	}
}

func placeholderImages(list string) []domain.Image {
	urls := strings.Split(list, ",")
	images := make([]domain.Image, len(urls))
	for i, u := range urls {
		images[i] = domain.Image{
			PublicID: fmt.Sprintf("image-%d", i+1),
			URL:      strings.TrimSpace(u),
		}
	}
	return images
}

// RowError describes why one row could not become a product.
type RowError struct {
	Row     int    `json:"row"`
	Column  string `json:"column,omitempty"`
	Message string `json:"message"`
}

func (e *RowError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("row %d: %s: %s", e.Row, e.Column, e.Message)
	}
	return fmt.Sprintf("row %d: %s", e.Row, e.Message)
}

// Product casts the draft into a product of shop. Prices accept decimal
// text, stock must be an integer, tags are comma separated.
func (d Draft) Product(shopID string, shop domain.ShopSnapshot, now time.Time) (*domain.Product, error) {
	original, err := domain.ParseAmount(d.OriginalPrice)
	if err != nil {
		return nil, &RowError{Row: d.Row, Column: ColOriginalPrice, Message: err.Error()}
	}
	discount, err := domain.ParseAmount(d.DiscountPrice)
	if err != nil {
		return nil, &RowError{Row: d.Row, Column: ColDiscountPrice, Message: err.Error()}
	}
	stockText := strings.TrimSpace(d.Stock)
	if stockText == "" {
		return nil, &RowError{Row: d.Row, Column: ColStock, Message: "is required"}
	}
	stock, err := strconv.Atoi(stockText)
	if err != nil {
		return nil, &RowError{Row: d.Row, Column: ColStock, Message: fmt.Sprintf("%q is not a whole number", stockText)}
	}

	return &domain.Product{
		ShopID:        shopID,
		Shop:          shop,
		Name:          d.Name,
		Description:   d.Description,
		ProductDetail: d.ProductDetail,
		Category:      d.Category,
		Color:         d.Color,
		Size:          d.Size,
		Tags:          SplitTags(d.Tags),
		OriginalPrice: original,
		DiscountPrice: discount,
		Stock:         stock,
		Images:        d.Images,
		Reviews:       []domain.Review{},
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// SplitTags splits a comma separated tag list, dropping blanks.
func SplitTags(s string) []string {
	tags := []string{}
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}
