package model

// Product is the catalogue document. ID is assigned by the repository and never changes afterwards.
type Product struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// ProductEventType labels every event of the product event stream.
const ProductEventType = "Product Event"

// ProductEvent is a transient tick of the product event stream.
type ProductEvent struct {
	EventID   int64  `json:"eventId"`
	EventType string `json:"eventType"`
}
