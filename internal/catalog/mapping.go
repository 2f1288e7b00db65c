package catalog

import (
	"bytes"
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
)

const (
	imageFieldID    = "image"
	categoryFieldID = "category"
	avatarFieldID   = "avatar"
)

var whitespaceRun = regexp.MustCompile(`\s+`)

type sys struct {
	ID       string `json:"id"`
	Type     string `json:"type,omitempty"`
	LinkType string `json:"linkType,omitempty"`
}

type entry struct {
	Sys    sys                        `json:"sys"`
	Fields map[string]json.RawMessage `json:"fields"`
}

type assetFile struct {
	URL string `json:"url"`
}

type asset struct {
	Sys    sys `json:"sys"`
	Fields struct {
		Title string    `json:"title"`
		File  assetFile `json:"file"`
	} `json:"fields"`
}

type includes struct {
	Entry []entry `json:"Entry"`
	Asset []asset `json:"Asset"`
}

type entriesResponse struct {
	Total    int      `json:"total"`
	Skip     int      `json:"skip"`
	Limit    int      `json:"limit"`
	Items    []entry  `json:"items"`
	Includes includes `json:"includes"`
}

func (e entry) stringField(name string) string {
	raw, ok := e.Fields[name]
	if !ok {
		return ""
	}
	var value string
	if err := json.Unmarshal(raw, &value); err != nil {
		return ""
	}
	return value
}

// numberField parses a numeric field that may arrive as a JSON number or a numeric string.
func (e entry) numberField(name string) float64 {
	raw, ok := e.Fields[name]
	if !ok {
		return 0
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return n
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if parsed, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			return parsed
		}
	}
	return 0
}

func toHTTPS(u string) string {
	if u == "" {
		return ""
	}
	if strings.HasPrefix(u, "http") {
		return u
	}
	return "https:" + u
}

// resolveAssetURL accepts an embedded asset, an array whose first element is an asset or a link,
// or a bare link resolved through includes.
func resolveAssetURL(e entry, field string, inc includes) string {
	raw, ok := e.Fields[field]
	if !ok || len(raw) == 0 {
		return ""
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) > 0 && raw[0] == '[' {
		var list []asset
		if err := json.Unmarshal(raw, &list); err != nil || len(list) == 0 {
			return ""
		}
		return assetOrLinkURL(list[0], inc)
	}
	var single asset
	if err := json.Unmarshal(raw, &single); err != nil {
		return ""
	}
	return assetOrLinkURL(single, inc)
}

func assetOrLinkURL(a asset, inc includes) string {
	if a.Fields.File.URL != "" {
		return toHTTPS(a.Fields.File.URL)
	}
	if a.Sys.ID == "" {
		return ""
	}
	for _, candidate := range inc.Asset {
		if candidate.Sys.ID == a.Sys.ID {
			return toHTTPS(candidate.Fields.File.URL)
		}
	}
	return ""
}

// resolveCategory returns the category id and title; the title stays empty when the linked
// entry was not included in the response.
func resolveCategory(e entry, inc includes) (string, string) {
	raw, ok := e.Fields[categoryFieldID]
	if !ok || len(raw) == 0 {
		return "", ""
	}
	var ref entry
	if err := json.Unmarshal(raw, &ref); err != nil {
		return "", ""
	}
	if title := ref.stringField("title"); title != "" {
		return ref.Sys.ID, title
	}
	if ref.Sys.ID == "" {
		return "", ""
	}
	for _, candidate := range inc.Entry {
		if candidate.Sys.ID == ref.Sys.ID {
			return ref.Sys.ID, candidate.stringField("title")
		}
	}
	return ref.Sys.ID, ""
}

func toProduct(e entry, inc includes) Product {
	categoryID, categoryTitle := resolveCategory(e, inc)
	return Product{
		ID:            e.Sys.ID,
		Title:         e.stringField("title"),
		Price:         e.numberField("price"),
		ImageURL:      resolveAssetURL(e, imageFieldID, inc),
		Description:   e.stringField("description"),
		CategoryID:    categoryID,
		CategoryTitle: categoryTitle,
	}
}

func toCategory(e entry) Category {
	title := e.stringField("title")
	slug := e.stringField("slug")
	if slug == "" && title != "" {
		slug = slugify(title)
	}
	return Category{ID: e.Sys.ID, Title: title, Slug: slug}
}

func toProfile(e entry, inc includes) *Profile {
	return &Profile{
		ID:        e.Sys.ID,
		Slug:      e.stringField("slug"),
		Name:      e.stringField("name"),
		Role:      e.stringField("role"),
		Bio:       e.stringField("bio"),
		AvatarURL: resolveAssetURL(e, avatarFieldID, inc),
	}
}

func slugify(title string) string {
	return whitespaceRun.ReplaceAllString(strings.ToLower(title), "-")
}
