package models

// SalesRecord is one row of weekly historical sales for a product in a
// region. Week holds the label from the dataset's date column, either
// "Mon-WkN" or "YYYY-Mon-WkN".
type SalesRecord struct {
	Week    string  `json:"week"`
	Product string  `json:"product"`
	Region  string  `json:"region"`
	Sales   float64 `json:"sales"`
	Price   float64 `json:"price"`
	NewTech bool    `json:"newTech"`
}
