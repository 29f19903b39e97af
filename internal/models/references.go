package models

// ProductReference identifies a product in the references block, along with
// the attributes the dashboard needs to render parameter controls.
type ProductReference struct {
	Name     string  `json:"name"`
	Price    float64 `json:"price,omitempty"`
	Priority int     `json:"priority,omitempty"`
}

// NewProductReference creates a ProductReference.
func NewProductReference(name string, price float64, priority int) ProductReference {
	return ProductReference{
		Name:     name,
		Price:    price,
		Priority: priority,
	}
}

// ReferencesModel References model for related data
type ReferencesModel struct {
	Products []ProductReference `json:"products"`
	Regions  []string           `json:"regions"`
	Channels []string           `json:"channels"`
	Weeks    []string           `json:"weeks"`
}

// NewEmptyReferences creates a new empty References model with initialized empty slices
func NewEmptyReferences() ReferencesModel {
	return ReferencesModel{
		Products: []ProductReference{},
		Regions:  []string{},
		Channels: []string{},
		Weeks:    []string{},
	}
}
