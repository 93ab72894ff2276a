package models

// ReferenceData holds the lookup lists the entry forms are built from.
// It is loaded once per request through a read-through cache and passed
// into services explicitly instead of living in a global.
type ReferenceData struct {
	ProductTypes      []ProductType `json:"product_types"`
	Rooms             []string      `json:"rooms"`
	PackTypes         []string      `json:"pack_types"`
	ExpenseCategories []string      `json:"expense_categories"`
}

// ProductType is one product with its sub-types (varieties).
type ProductType struct {
	Name     string   `json:"name"`
	SubTypes []string `json:"sub_types"`
}

// HasProduct reports whether the product/sub-type pair is known. An empty
// sub-type is accepted for any known product.
func (r *ReferenceData) HasProduct(product, subType string) bool {
	for _, p := range r.ProductTypes {
		if p.Name != product {
			continue
		}
		if subType == "" {
			return true
		}
		for _, s := range p.SubTypes {
			if s == subType {
				return true
			}
		}
		return false
	}
	return false
}

// HasRoom reports whether the room label is known.
func (r *ReferenceData) HasRoom(room string) bool {
	for _, v := range r.Rooms {
		if v == room {
			return true
		}
	}
	return false
}

// HasPackType reports whether the pack type is known.
func (r *ReferenceData) HasPackType(packType string) bool {
	for _, v := range r.PackTypes {
		if v == packType {
			return true
		}
	}
	return false
}

// HasExpenseCategory reports whether the expense category is known.
func (r *ReferenceData) HasExpenseCategory(category string) bool {
	for _, v := range r.ExpenseCategories {
		if v == category {
			return true
		}
	}
	return false
}
