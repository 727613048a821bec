package enum

// ProductSort names an inventory ordering.
type ProductSort string

const (
	SortByName         ProductSort = "name"
	SortByPriceLow     ProductSort = "price_low"
	SortByPriceHigh    ProductSort = "price_high"
	SortByCategory     ProductSort = "category"
	SortByQuantityLow  ProductSort = "quantity_low"
	SortByQuantityHigh ProductSort = "quantity_high"
	SortByLowStock     ProductSort = "low_stock"
)
