package models

// Plan maps to the `plans` table: one purchasable subscription tier. The
// fields mirror what a payment basket line needs.
type Plan struct {
	ID           string `gorm:"column:id;primaryKey;size:100" json:"id"`
	Name         string `gorm:"column:name;size:200" json:"name"`
	Category     string `gorm:"column:category;size:100" json:"category"`
	ItemType     string `gorm:"column:item_type;size:20" json:"item_type"` // PHYSICAL or VIRTUAL
	Price        string `gorm:"column:price;size:50" json:"price"`
	Currency     string `gorm:"column:currency;size:10" json:"currency"`
	DurationDays int    `gorm:"column:duration_days" json:"duration_days"`
	Active       bool   `gorm:"column:active;default:true" json:"active"`
}

func (Plan) TableName() string {
	return "plans"
}
