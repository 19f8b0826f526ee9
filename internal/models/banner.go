package models

// Body is a piece of rich text together with the text format it should be
// rendered with (e.g. "basic_html", "markdown").
type Body struct {
	Value  string `json:"value"`
	Format string `json:"format"`
}

// Translation holds the language-specific content of a banner. Banners carry
// a sparse, ordered list of translations; not every active site language has
// to be populated.
type Translation struct {
	Lang  string `json:"lang"`
	Title string `json:"title"`
	Body  Body   `json:"body"`
}

// Banner is a configured content unit plus the rules that decide where it
// appears. Its identity is the positional index in the banner list; positions
// are reassigned densely on every save so there are never gaps.
//
// The order of the banner list is semantically significant: the first banner
// whose target sections match the request wins.
type Banner struct {
	// Translations in stored order. The order matters for the translation
	// fallback chain: when neither the current nor the default language is
	// present, the first stored entry is used.
	Translations []Translation `json:"translations"`
	// ImageID references a stored file shared by all languages of this
	// banner. Empty when the banner has no image.
	ImageID string `json:"image_id,omitempty"`
	// TargetSections is the ordered list of target patterns. A banner with
	// no target sections never matches.
	TargetSections []string `json:"target_sections"`
	// CSSClass is an optional free-text class applied to the rendered
	// banner, shared across languages.
	CSSClass string `json:"css_class,omitempty"`
}

// TranslationFor returns the stored translation for the given language code.
func (b Banner) TranslationFor(lang string) (Translation, bool) {
	for _, tr := range b.Translations {
		if tr.Lang == lang {
			return tr, true
		}
	}
	return Translation{}, false
}

// Selection is the result of running the banner selector: the matching banner,
// its positional index and the specific pattern that matched. The matched
// pattern drives downstream template suggestion.
type Selection struct {
	Banner         Banner `json:"banner"`
	Index          int    `json:"index"`
	MatchedPattern string `json:"matched_pattern"`
}

// CacheMaxAgeUnbounded marks render output as cacheable until its tags are
// invalidated, never by time.
const CacheMaxAgeUnbounded = -1

// CacheMetadata describes how the rendered banner may be cached by the
// consuming layer.
type CacheMetadata struct {
	Tags     []string `json:"tags"`
	Contexts []string `json:"contexts"`
	MaxAge   int      `json:"max_age"`
}

// RenderData is the payload handed to the rendering layer for a selected
// banner. Body holds the token-substituted source text; BodyHTML the
// sanitized markup produced from it.
type RenderData struct {
	Title             string        `json:"title"`
	Body              Body          `json:"body"`
	BodyHTML          string        `json:"body_html"`
	ImageURL          string        `json:"image_url,omitempty"`
	CSSClass          string        `json:"css_class,omitempty"`
	MatchedPattern    string        `json:"matched_pattern"`
	SectionSuggestion string        `json:"section_suggestion"`
	Cache             CacheMetadata `json:"cache"`
}
