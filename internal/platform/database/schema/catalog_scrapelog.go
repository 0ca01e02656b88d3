package schema

// CatalogScrapeLogTable represents the 'scrapelog' table
type CatalogScrapeLogTable struct {
	Table        string
	ID           string
	SourceID     string
	TargetURL    string
	Action       string
	Status       string
	ErrorMessage string
	CreatedAt    string
}

var CatalogScrapeLog = CatalogScrapeLogTable{
	Table:        "scrapelog",
	ID:           "id",
	SourceID:     "sourceid",
	TargetURL:    "targeturl",
	Action:       "action",
	Status:       "status",
	ErrorMessage: "errormessage",
	CreatedAt:    "createdat",
}
