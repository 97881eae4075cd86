// Package mail renders saved-search digests and delivers them over SMTP or a
// transactional-mail HTTP API.
package mail

import (
	"bytes"
	"fmt"
	"html/template"
	"strconv"
	"strings"
	texttemplate "text/template"

	"github.com/rs/zerolog/log"
	"github.com/tdewolff/minify/v2"
	htmlmin "github.com/tdewolff/minify/v2/html"

	"campus_rentals/internal/domain"
)

type Message struct {
	To      string
	ToName  string
	Subject string
	HTML    string
	Text    string
}

const digestHTML = `
<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2 style="color: #002f6c; margin-bottom: 20px;">New Properties Found</h2>
  <p style="color: #4b5563; margin-bottom: 20px;">
    We found {{len .Properties}} new {{if eq (len .Properties) 1}}property{{else}}properties{{end}} matching your saved search "{{.SearchName}}".
  </p>
  {{range .Properties}}
  <div style="margin-bottom: 20px; padding: 15px; border: 1px solid #e5e7eb; border-radius: 8px;">
    <h3 style="margin: 0 0 10px 0; color: #002f6c;">{{.Title}}</h3>
    <p style="margin: 0 0 10px 0; color: #4b5563;">{{.Description}}</p>
    <div style="margin-bottom: 10px;">
      <span style="color: #6b7280;">${{price .Price}}/mo</span>
      <span style="color: #6b7280;">{{.Bedrooms}} beds</span>
      <span style="color: #6b7280;">{{.Bathrooms}} baths</span>
    </div>
    <a href="{{$.AppURL}}/properties/{{.ID}}"
       style="display: inline-block; padding: 8px 16px; background-color: #002f6c; color: white; text-decoration: none; border-radius: 4px;">View Property</a>
  </div>
  {{end}}
  <p style="color: #6b7280; margin-top: 20px; font-size: 14px;">
    You're receiving this email because you have saved search notifications enabled.
    <a href="{{.AppURL}}/saved-searches" style="color: #002f6c;">Manage your notification preferences</a>
  </p>
</div>
`

const digestText = `We found {{len .Properties}} new {{if eq (len .Properties) 1}}property{{else}}properties{{end}} matching your saved search "{{.SearchName}}".
{{range .Properties}}
{{.Title}}
{{if .Description}}{{.Description}}
{{end}}${{price .Price}}/mo · {{.Bedrooms}} beds · {{.Bathrooms}} baths
{{$.AppURL}}/properties/{{.ID}}
{{end}}
You're receiving this email because you have saved search notifications enabled.
Manage your notification preferences: {{.AppURL}}/saved-searches
`

var priceFmt = func(p float64) string { return strconv.FormatFloat(p, 'f', -1, 64) }

var (
	digestTextTmpl = texttemplate.Must(texttemplate.New("digest_text").Funcs(texttemplate.FuncMap{
		"price": priceFmt,
	}).Parse(digestText))

	digestTmpl = template.Must(template.New("digest").Funcs(template.FuncMap{
		"price": priceFmt,
	}).Parse(digestHTML))

	minifier = func() *minify.M {
		m := minify.New()
		m.AddFunc("text/html", htmlmin.Minify)
		return m
	}()
)

type digestView struct {
	AppURL     string
	SearchName string
	Properties []domain.Property
}

// RenderDigest builds the single email sent for one saved search.
func RenderDigest(d domain.Digest, appURL string) (Message, error) {
	if len(d.Properties) == 0 {
		return Message{}, fmt.Errorf("render digest %s: no properties", d.SearchID)
	}
	view := digestView{
		AppURL:     strings.TrimRight(appURL, "/"),
		SearchName: d.SearchName,
		Properties: d.Properties,
	}
	var buf, text bytes.Buffer
	if err := digestTmpl.Execute(&buf, view); err != nil {
		return Message{}, fmt.Errorf("render digest %s: %w", d.SearchID, err)
	}
	if err := digestTextTmpl.Execute(&text, view); err != nil {
		return Message{}, fmt.Errorf("render digest text %s: %w", d.SearchID, err)
	}

	body, err := minifier.String("text/html", buf.String())
	if err != nil {
		// Minification is cosmetic; ship the unminified markup.
		log.Warn().Err(err).Str("search_id", d.SearchID).Msg("digest minify failed")
		body = buf.String()
	}
	return Message{
		To:      d.To.Email,
		ToName:  d.To.DisplayName,
		Subject: "New Properties Matching Your Search: " + d.SearchName,
		HTML:    body,
		Text:    text.String(),
	}, nil
}
