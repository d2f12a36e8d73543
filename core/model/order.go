package model

// Priority classifies how urgently an order must be dispatched.
type Priority int

const (
	PriorityNormal Priority = iota
	PriorityUrgent
	PriorityHigh
	PriorityLow
)

// String returns a human-readable representation of the priority.
func (p Priority) String() string {
	switch p {
	case PriorityUrgent:
		return "urgent"
	case PriorityHigh:
		return "high"
	case PriorityLow:
		return "low"
	default:
		return "normal"
	}
}

// ParsePriority maps a wire-level priority string to its enum value.
// Unrecognised strings map to PriorityNormal.
func ParsePriority(s string) Priority {
	switch s {
	case "urgent":
		return PriorityUrgent
	case "high":
		return PriorityHigh
	case "low":
		return PriorityLow
	default:
		return PriorityNormal
	}
}

// MarshalText encodes the priority as its wire string.
func (p Priority) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText decodes a wire-level priority string.
func (p *Priority) UnmarshalText(b []byte) error {
	*p = ParsePriority(string(b))
	return nil
}

// OrderSize buckets an order by value and item count for vehicle matching.
type OrderSize int

const (
	SizeSmall OrderSize = iota
	SizeMedium
	SizeLarge
)

// String returns a human-readable representation of the order size.
func (s OrderSize) String() string {
	switch s {
	case SizeMedium:
		return "medium"
	case SizeLarge:
		return "large"
	default:
		return "small"
	}
}

// Order is the dispatch view of an order. It is read-only to the dispatcher.
type Order struct {
	ID               string     `json:"order_id"`
	MerchantLocation Coordinate `json:"merchant_location"`
	TotalAmount      float64    `json:"total_amount"`
	ItemCount        int        `json:"item_count"`
	Priority         Priority   `json:"priority"`
}

// Size estimates how bulky the order is from its value and item count.
func (o Order) Size() OrderSize {
	if o.TotalAmount > 200 || o.ItemCount > 5 {
		return SizeLarge
	}
	if o.TotalAmount > 50 || o.ItemCount > 2 {
		return SizeMedium
	}
	return SizeSmall
}

// Validate checks that the order carries enough information to dispatch.
func (o Order) Validate() error {
	if o.ID == "" {
		return errEmptyOrderID
	}
	if o.MerchantLocation == (Coordinate{}) {
		return errNoMerchantLocation
	}
	return nil
}
