package catalog

// CustomOption lets the user type a value that is not in a list.
const CustomOption = "custom"

// Categories offered on the inventory screen.
var Categories = []string{
	"Grocery",
	"Cosmetics",
	"Personal Care",
	"Baby Care",
	"Dairy Products",
	"Bakery Items",
	"Beverages",
	"Snacks & Biscuits",
	"Frozen Foods",
	"Household Items",
	"Cleaning & Detergents",
	"Stationery",
	"Kitchen Items",
	"Plastic & Disposable Items",
	"Pet Care",
	"Health & Wellness",
	"Others",
	CustomOption,
}

// Weights offered on the inventory screen.
var Weights = []string{
	"50 g",
	"100 g",
	"½ Pao (125 g)",
	"1 Pao (250 g)",
	"½ KG (500 g)",
	"1 KG",
	"2 KG",
	"5 KG",
	CustomOption,
}

// Units offered on the inventory screen.
var Units = []string{
	"Piece (pcs)",
	"Bottle",
	"Tube",
	"Pack",
	"Jar",
	"Box",
	"Carton",
	"Packet",
	"Dozen",
	CustomOption,
}

const defaultCategoryColor = "#666"

var categoryColors = map[string]string{
	"Grocery":                    "#4CAF50",
	"Cosmetics":                  "#E91E63",
	"Personal Care":              "#2196F3",
	"Baby Care":                  "#FF9800",
	"Dairy Products":             "#795548",
	"Bakery Items":               "#FF5722",
	"Beverages":                  "#009688",
	"Snacks & Biscuits":          "#9C27B0",
	"Frozen Foods":               "#00BCD4",
	"Household Items":            "#607D8B",
	"Cleaning & Detergents":      "#3F51B5",
	"Stationery":                 "#FFC107",
	"Kitchen Items":              "#8BC34A",
	"Plastic & Disposable Items": "#9E9E9E",
	"Pet Care":                   "#795548",
	"Health & Wellness":          "#FF4081",
	"Others":                     "#9C27B0",
}

// CategoryColor is the badge color for category.
func CategoryColor(category string) string {
	if c, ok := categoryColors[category]; ok {
		return c
	}
	return defaultCategoryColor
}
