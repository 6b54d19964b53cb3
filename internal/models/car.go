package models

// Car is a registry record that changes how exits are billed for a plate.
type Car struct {
	ID          int64  `db:"id" json:"id"`
	Plate       string `db:"plate" json:"plate"`
	Free        bool   `db:"is_free" json:"is_free"`
	SpecialTaxi bool   `db:"is_special_taxi" json:"is_special_taxi"`
	Blocked     bool   `db:"is_blocked" json:"is_blocked"`
	Position    string `db:"position" json:"position,omitempty"`
	LicenseRef  string `db:"license_ref" json:"license_ref,omitempty"`
}
