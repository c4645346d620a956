package dtos

// Public storefront shapes. These deliberately omit host identifiers and
// Stripe state; guests only see what they can buy.

type StorefrontService struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Icon        string  `json:"icon"`
}

type StorefrontProperty struct {
	ID              string              `json:"id"`
	Name            string              `json:"name"`
	Address         string              `json:"address"`
	ImageURL        string              `json:"image_url"`
	ContactPhone    *string             `json:"contact_phone,omitempty"`
	ContactGuideURL *string             `json:"contact_guide_url,omitempty"`
	Services        []StorefrontService `json:"services"`
}
