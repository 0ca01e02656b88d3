package schema

// CatalogComicTable represents the 'comic' table
type CatalogComicTable struct {
	Table       string
	ID          string
	Title       string
	Slug        string
	Description string
	CoverURL    string
	Status      string
	Genres      string
	SourceID    string
	SourceSlug  string
	SourceURL   string
	CreatedAt   string
	UpdatedAt   string

	// Constraint names
	SlugKey   string
	SourceKey string
}

var CatalogComic = CatalogComicTable{
	Table:       "comic",
	ID:          "id",
	Title:       "title",
	Slug:        "slug",
	Description: "description",
	CoverURL:    "coverurl",
	Status:      "status",
	Genres:      "genres",
	SourceID:    "sourceid",
	SourceSlug:  "sourceslug",
	SourceURL:   "sourceurl",
	CreatedAt:   "createdat",
	UpdatedAt:   "updatedat",

	SlugKey:   "comic_slug_key",
	SourceKey: "comic_source_key",
}
