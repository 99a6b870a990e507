package domain

// Department is the thin catalog record used for conflict attribution and
// badge colors. Seeded at startup, otherwise read-only here.
type Department struct {
	ID    int64
	Name  string
	Color string // HEX
}
