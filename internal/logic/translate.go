package logic

import "github.com/opencms/sectionbanner/internal/models"

// ResolveTranslation picks the content to display for a banner given the
// request's language and the site default. The fallback chain is: exact
// current-language entry, then the default-language entry, then the first
// stored translation, then empty content carrying defaultFormat.
//
// It never fails; a banner without translations degrades to an empty title
// and body.
func ResolveTranslation(b models.Banner, currentLang, defaultLang, defaultFormat string) models.Translation {
	if tr, ok := b.TranslationFor(currentLang); ok {
		return tr
	}
	if tr, ok := b.TranslationFor(defaultLang); ok {
		return tr
	}
	if len(b.Translations) > 0 {
		return b.Translations[0]
	}
	return models.Translation{
		Lang: currentLang,
		Body: models.Body{Format: defaultFormat},
	}
}
