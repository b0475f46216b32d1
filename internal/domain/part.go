package domain

// Part is a catalog item identified by its TRT code.
type Part struct {
	ID           int64
	SKU          string
	Translations PartTranslations
	Images       []string
	CarNames     []string
	Models       []string
	OEMs         []string
	Years        []string
	TrtCode      string
	Brand        string
	Categories   []CategoryRef
}

// CategoryRef is the category view embedded in a part.
type CategoryRef struct {
	ID           int64
	Translations CategoryTranslations
	Images       []string
}

// PartSearch carries optional case-insensitive filters; empty fields are ignored.
type PartSearch struct {
	OEM   string
	Trt   string
	Brand string
	Model string
}
