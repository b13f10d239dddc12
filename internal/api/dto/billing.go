package dto

// CheckoutResponse carries the payment page URL
type CheckoutResponse struct {
	URL string `json:"url"`
}
