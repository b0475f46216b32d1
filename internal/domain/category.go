package domain

// Category groups parts; a part may belong to many categories.
type Category struct {
	ID           int64
	Translations CategoryTranslations
	Images       []string
	ImageURL     string
	Parts        []Part
}
