// Package model defines data structures used throughout the application.
package model

// MinTextLength is the minimum accepted length for article text fields.
const MinTextLength = 5

// Article represents a published article. UID is the application-level
// sequence identifier; DocID is the identifier assigned by the document
// store on insert.
type Article struct {
	DocID    string `json:"_id,omitempty"`
	UID      int64  `json:"uid"`
	Title    string `json:"title"`
	FullText string `json:"fullText"`
}

// ArticleInput is the request payload for creating or updating an
// article. Pointer fields distinguish absent fields from empty ones so
// updates can merge only what the client supplied.
type ArticleInput struct {
	Title    *string `json:"title"`
	FullText *string `json:"fullText"`
}

// FieldErrors maps a field name to its validation message.
type FieldErrors map[string]string

const textTooShortMsg = "must be at least 5 characters long"

// ValidateCreate checks that both text fields are present and long enough.
func (in *ArticleInput) ValidateCreate() FieldErrors {
	errs := FieldErrors{}

	if in.Title == nil || len(*in.Title) < MinTextLength {
		errs["title"] = textTooShortMsg
	}

	if in.FullText == nil || len(*in.FullText) < MinTextLength {
		errs["fullText"] = textTooShortMsg
	}

	if len(errs) == 0 {
		return nil
	}

	return errs
}

// ValidateUpdate checks only the fields the client supplied. An empty
// input is valid; the update is then a no-op merge.
func (in *ArticleInput) ValidateUpdate() FieldErrors {
	errs := FieldErrors{}

	if in.Title != nil && len(*in.Title) < MinTextLength {
		errs["title"] = textTooShortMsg
	}

	if in.FullText != nil && len(*in.FullText) < MinTextLength {
		errs["fullText"] = textTooShortMsg
	}

	if len(errs) == 0 {
		return nil
	}

	return errs
}

// Document returns the storage representation of the article.
func (a *Article) Document() map[string]any {
	return map[string]any{
		"uid":      a.UID,
		"title":    a.Title,
		"fullText": a.FullText,
	}
}

// ArticleFromDocument reconstructs an article from its storage
// document. The uid may come back as any numeric type depending on the
// store backend.
func ArticleFromDocument(id string, doc map[string]any) *Article {
	return &Article{
		DocID:    id,
		UID:      docInt64(doc, "uid"),
		Title:    docString(doc, "title"),
		FullText: docString(doc, "fullText"),
	}
}

func docInt64(doc map[string]any, key string) int64 {
	switch v := doc[key].(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case float64:
		return int64(v)
	default:
		return 0
	}
}

// Fields returns the supplied fields as a partial document for merge
// updates.
func (in *ArticleInput) Fields() map[string]any {
	fields := make(map[string]any)

	if in.Title != nil {
		fields["title"] = *in.Title
	}

	if in.FullText != nil {
		fields["fullText"] = *in.FullText
	}

	return fields
}
