package schema

// CatalogChapterTable represents the 'chapter' table
type CatalogChapterTable struct {
	Table           string
	ID              string
	ComicID         string
	ChapterNumber   string
	Title           string
	SourceChapterID string
	SourceURL       string
	CreatedAt       string
}

var CatalogChapter = CatalogChapterTable{
	Table:           "chapter",
	ID:              "id",
	ComicID:         "comicid",
	ChapterNumber:   "chapternumber",
	Title:           "title",
	SourceChapterID: "sourcechapterid",
	SourceURL:       "sourceurl",
	CreatedAt:       "createdat",
}
