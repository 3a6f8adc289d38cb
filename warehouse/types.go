package warehouse

// Shipment collects marker combinations that cannot be rewritten.
type Shipment struct {
	ID       int64    `json:"id"`
	Carrier  string   `json:"carrier" opt:"nullable"`
	Tracking *string  `json:"tracking,with:base64" opt:"nullable"`
	Weight   *float64 `json:"weight" opt:"nullable,not_required"`
	Internal *string  `json:"-" opt:"not_required"`
	Dock     *int     `json:"dock" opt:"nulable"`
	Notes    *string  `json:"notes" opt:"not_required"`
}

// Pallet puts markers on double pointers, which cannot tell a missing key
// from null once decoded.
type Pallet struct {
	ID     int64    `json:"id"`
	Label  *string  `json:"label" opt:"nullable"`
	Depth  **uint16 `json:"depth" opt:"not_required"`
	Backup **string `json:"backup" opt:"nullable,not_required"`
}
