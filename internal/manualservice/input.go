package manualservice

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"github.com/starford/tebiki/internal/apperr"
	"github.com/starford/tebiki/internal/models"
)

// ManualInput is the editable part of a manual.
type ManualInput struct {
	Title          string                 `json:"title"`
	URL            string                 `json:"url"`
	MainCategory   string                 `json:"main_category"`
	SubCategory    string                 `json:"sub_category"`
	Tags           []string               `json:"tags"`
	ReferenceLinks []models.ReferenceLink `json:"reference_links"`
	// IsPublished defaults to true when omitted.
	IsPublished *bool `json:"is_published"`
	OrderIndex  int   `json:"order_index"`
}

func (in *ManualInput) normalize() {
	in.Title = strings.TrimSpace(in.Title)
	in.URL = strings.TrimSpace(in.URL)
	in.MainCategory = strings.TrimSpace(in.MainCategory)
	in.SubCategory = strings.TrimSpace(in.SubCategory)
	in.Tags = normalizeTags(in.Tags)
	in.ReferenceLinks = NormalizeReferenceLinks(in.ReferenceLinks)
}

func (in *ManualInput) validate(categories []string) error {
	names := make([]any, len(categories))
	for i, c := range categories {
		names[i] = c
	}
	err := validation.ValidateStruct(in,
		validation.Field(&in.Title, validation.Required, validation.RuneLength(1, 200)),
		validation.Field(&in.URL, validation.Required, validation.By(manualURL)),
		validation.Field(&in.MainCategory, validation.Required, validation.In(names...).Error("must be a known category")),
		validation.Field(&in.SubCategory, validation.RuneLength(0, 200)),
		validation.Field(&in.Tags, validation.Each(validation.RuneLength(1, 50))),
		validation.Field(&in.ReferenceLinks, validation.Each(validation.By(referenceLink))),
		validation.Field(&in.OrderIndex, validation.Min(0)),
	)
	if err != nil {
		return invalid(err)
	}
	return nil
}

func (in *ManualInput) apply(m *models.Manual) {
	m.Title = in.Title
	m.URL = in.URL
	m.MainCategory = in.MainCategory
	m.SubCategory = in.SubCategory
	m.Tags = in.Tags
	m.ReferenceLinks = in.ReferenceLinks
	m.IsPublished = in.IsPublished == nil || *in.IsPublished
	m.OrderIndex = in.OrderIndex
}

// manualURL accepts an absolute http(s) URL or the "#" placeholder.
func manualURL(v any) error {
	s, _ := v.(string)
	if s == models.UnavailableURL {
		return nil
	}
	return webURL(s)
}

func referenceLink(v any) error {
	l, ok := v.(models.ReferenceLink)
	if !ok {
		return errors.New("invalid reference link")
	}
	return webURL(l.URL)
}

func webURL(s string) error {
	if err := is.URL.Validate(s); err != nil {
		return err
	}
	u, err := url.Parse(s)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return errors.New("must be an http(s) URL")
	}
	return nil
}

func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

func invalid(err error) error {
	return fmt.Errorf("%w: %w", apperr.ErrInvalidInput, err)
}
