package schema

// CatalogSourceTable represents the 'source' table
type CatalogSourceTable struct {
	Table     string
	ID        string
	Code      string
	Name      string
	BaseURL   string
	IsActive  string
	CreatedAt string
	UpdatedAt string
}

var CatalogSource = CatalogSourceTable{
	Table:     "source",
	ID:        "id",
	Code:      "code",
	Name:      "name",
	BaseURL:   "baseurl",
	IsActive:  "isactive",
	CreatedAt: "createdat",
	UpdatedAt: "updatedat",
}
