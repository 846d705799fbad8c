package models

// Product is a catalog item. Products are immutable once added: there is
// no edit or delete flow, only appends through the admin wizard.
type Product struct {
	Name        string `json:"name" db:"name"`
	Price       int64  `json:"price" db:"price"`
	Description string `json:"description" db:"description"`
	PhotoPath   string `json:"photo_path" db:"photo_path"`
}

// Category groups products under a slug key derived from the display name.
type Category struct {
	Key      string    `json:"-" db:"key"`
	Name     string    `json:"name" db:"name"`
	Products []Product `json:"products"`
}

// CartEntry is one add-to-cart action. Adding the same product twice
// produces two entries; entries are never merged.
type CartEntry struct {
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
}

// Subtotal is the price of the entry (price x quantity).
func (e CartEntry) Subtotal() int64 {
	return e.Product.Price * int64(e.Quantity)
}

// Order is assembled from the checkout form and the user's cart at
// submission time. Orders are ephemeral: they are formatted, sent to the
// administrator and discarded, no order history is kept.
type Order struct {
	UserID  int64
	Name    string
	Phone   string
	Address string
	Comment string
	Items   []CartEntry
	Total   int64
}
