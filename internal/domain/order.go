package domain

import (
	"time"
)

// LineItem is one product entry in an order's cart.
type LineItem struct {
	ProductID  string `json:"_id"`
	ShopID     string `json:"shopId"`
	Name       string `json:"name"`
	Quantity   int    `json:"qty"`
	Price      int64  `json:"discountPrice"`
	IsReviewed bool   `json:"isReviewed"`
}

// Order is the buyer-side record a review refers back to.
type Order struct {
	ID         string     `json:"id"`
	UserID     string     `json:"userId"`
	Cart       []LineItem `json:"cart"`
	TotalPrice int64      `json:"totalPrice"`
	Status     string     `json:"status"`
	CreatedAt  time.Time  `json:"createdAt"`
}

// LineItem returns the cart entry for productID.
func (o *Order) LineItem(productID string) (*LineItem, bool) {
	for i := range o.Cart {
		if o.Cart[i].ProductID == productID {
			return &o.Cart[i], true
		}
	}
	return nil, false
}
