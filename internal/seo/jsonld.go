package seo

import (
	"encoding/json"

	"github.com/jaanus110/haagissuvilarent/internal/config"
)

const schemaContext = "https://schema.org"

// JSON marshals v to a compact JSON string. It returns an empty string on error.
func JSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}

// BusinessInput carries the localized values of the business block.
type BusinessInput struct {
	Name          string
	AlternateName string
	URL           string
	Logo          string
	Image         string
	Business      config.Business
}

// LocalBusiness returns the organisation schema with address, geo, contact
// and opening hours.
func LocalBusiness(in BusinessInput) map[string]any {
	b := in.Business
	typ := b.Type
	if typ == "" {
		typ = "LocalBusiness"
	}
	m := map[string]any{
		"@context": schemaContext,
		"@type":    typ,
		"name":     in.Name,
		"url":      in.URL,
	}
	if in.AlternateName != "" {
		m["alternateName"] = in.AlternateName
	}
	if in.Logo != "" {
		m["logo"] = in.Logo
	}
	if in.Image != "" {
		m["image"] = in.Image
	}
	if b.Telephone != "" {
		m["telephone"] = b.Telephone
	}
	if b.Email != "" {
		m["email"] = b.Email
	}
	if b.Address != (config.Address{}) {
		m["address"] = map[string]any{
			"@type":           "PostalAddress",
			"addressLocality": b.Address.Locality,
			"addressRegion":   b.Address.Region,
			"addressCountry":  b.Address.Country,
		}
	}
	if b.Geo.Latitude != "" && b.Geo.Longitude != "" {
		m["geo"] = map[string]any{
			"@type":     "GeoCoordinates",
			"latitude":  json.Number(b.Geo.Latitude),
			"longitude": json.Number(b.Geo.Longitude),
		}
	}
	if len(b.Hours.Days) > 0 {
		m["openingHoursSpecification"] = []map[string]any{{
			"@type":     "OpeningHoursSpecification",
			"dayOfWeek": b.Hours.Days,
			"opens":     b.Hours.Opens,
			"closes":    b.Hours.Closes,
		}}
	}
	if len(b.SameAs) > 0 {
		m["sameAs"] = b.SameAs
	}
	return m
}

// Offer is one localized price point.
type Offer struct {
	Name  string
	Price string
}

// ProductInput carries the localized values of the product block.
type ProductInput struct {
	Name        string
	Brand       string
	Description string
	URL         string
	Images      []string
	Currency    string
	Offers      []Offer
}

// Product returns a product schema with an aggregate offer over all prices.
func Product(in ProductInput) map[string]any {
	m := map[string]any{
		"@context":    schemaContext,
		"@type":       "Product",
		"name":        in.Name,
		"description": in.Description,
	}
	if in.Brand != "" {
		m["brand"] = map[string]any{"@type": "Brand", "name": in.Brand}
	}
	if in.URL != "" {
		m["url"] = in.URL
	}
	if len(in.Images) > 0 {
		m["image"] = in.Images
	}
	if len(in.Offers) == 0 {
		return m
	}
	offers := make([]map[string]any, 0, len(in.Offers))
	low, high := in.Offers[0].Price, in.Offers[0].Price
	for _, o := range in.Offers {
		offers = append(offers, map[string]any{
			"@type":         "Offer",
			"name":          o.Name,
			"price":         json.Number(o.Price),
			"priceCurrency": in.Currency,
			"availability":  "https://schema.org/InStock",
			"url":           in.URL,
		})
		if lessPrice(o.Price, low) {
			low = o.Price
		}
		if lessPrice(high, o.Price) {
			high = o.Price
		}
	}
	m["offers"] = map[string]any{
		"@type":         "AggregateOffer",
		"priceCurrency": in.Currency,
		"lowPrice":      json.Number(low),
		"highPrice":     json.Number(high),
		"offerCount":    len(offers),
		"offers":        offers,
	}
	return m
}

// WebPage returns the page schema, part of the WebSite, with a RentAction
// pointing at the booking entry point.
func WebPage(name, description, url, lang, siteName, siteURL, actionTarget string) map[string]any {
	m := map[string]any{
		"@context":    schemaContext,
		"@type":       "WebPage",
		"@id":         url + "#webpage",
		"name":        name,
		"description": description,
		"url":         url,
		"inLanguage":  lang,
		"isPartOf":    WebSite(siteName, siteURL),
	}
	if actionTarget != "" {
		m["potentialAction"] = map[string]any{
			"@type":  "RentAction",
			"target": actionTarget,
		}
	}
	return m
}

// WebSite returns a minimal WebSite schema.
func WebSite(name, url string) map[string]any {
	m := map[string]any{
		"@type": "WebSite",
		"name":  name,
	}
	if url != "" {
		m["url"] = url
	}
	return m
}

// BreadcrumbItem maps name and absolute item URL.
type BreadcrumbItem struct {
	Name string
	Item string
}

// BreadcrumbList builds schema.org BreadcrumbList.
func BreadcrumbList(items []BreadcrumbItem) map[string]any {
	el := make([]map[string]any, 0, len(items))
	for i, it := range items {
		el = append(el, map[string]any{
			"@type":    "ListItem",
			"position": i + 1,
			"name":     it.Name,
			"item":     it.Item,
		})
	}
	return map[string]any{
		"@context":        schemaContext,
		"@type":           "BreadcrumbList",
		"itemListElement": el,
	}
}

func lessPrice(a, b string) bool {
	fa, errA := json.Number(a).Float64()
	fb, errB := json.Number(b).Float64()
	if errA != nil || errB != nil {
		return false
	}
	return fa < fb
}
