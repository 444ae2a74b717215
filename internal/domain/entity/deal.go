package entity

// PlaceholderImage shown when the feed has no photo
const PlaceholderImage = "https://via.placeholder.com/150?text=Resim+Yok"

// Deal discounted item from the deals feed
type Deal struct {
	Title         string  `json:"title"`
	Price         float64 `json:"price"`
	ListPrice     float64 `json:"list_price"`
	Discount      int     `json:"discount"`
	DiscountLabel string  `json:"discount_label"`
	ImageURL      string  `json:"image_url"`
	URL           string  `json:"url"`
}
