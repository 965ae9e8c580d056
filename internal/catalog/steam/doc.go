// Package steam wraps the public Steam storefront endpoints used to feed
// the catalog cache: text search for title resolution and per-app detail
// lookups for the background scraper and the metadata provider.
package steam
