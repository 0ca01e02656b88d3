package schema

// CatalogChapterPageTable represents the 'chapterpage' table (the page cache)
type CatalogChapterPageTable struct {
	Table          string
	ChapterID      string
	PageNumber     string
	SourceImageURL string
	CachedAt       string
}

var CatalogChapterPage = CatalogChapterPageTable{
	Table:          "chapterpage",
	ChapterID:      "chapterid",
	PageNumber:     "pagenumber",
	SourceImageURL: "sourceimageurl",
	CachedAt:       "cachedat",
}
