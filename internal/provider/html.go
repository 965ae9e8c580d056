package provider

import "strings"

// stripTags removes HTML markup and entity-decodes the common escapes the
// storefront uses in descriptions, then collapses runs of whitespace.
func stripTags(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	inTag := false
	for _, r := range s {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
			b.WriteByte(' ')
		case !inTag:
			b.WriteRune(r)
		}
	}
	decoded := b.String()
	for entity, replacement := range map[string]string{
		"&amp;":  "&",
		"&quot;": "\"",
		"&#39;":  "'",
		"&lt;":   "<",
		"&gt;":   ">",
		"&nbsp;": " ",
	} {
		decoded = strings.ReplaceAll(decoded, entity, replacement)
	}
	return strings.Join(strings.Fields(decoded), " ")
}

// imageSources extracts every img src attribute value from an HTML page.
func imageSources(page string) []string {
	var urls []string
	rest := page
	for {
		imgStart := strings.Index(rest, "<img")
		if imgStart < 0 {
			return urls
		}
		rest = rest[imgStart:]
		tagEnd := strings.Index(rest, ">")
		if tagEnd < 0 {
			return urls
		}
		tag := rest[:tagEnd]
		rest = rest[tagEnd:]

		srcStart := strings.Index(tag, `src="`)
		if srcStart < 0 {
			continue
		}
		value := tag[srcStart+len(`src="`):]
		srcEnd := strings.Index(value, `"`)
		if srcEnd <= 0 {
			continue
		}
		urls = append(urls, value[:srcEnd])
	}
}

// attrValue extracts one attribute value from the first occurrence of a
// marker substring in an HTML page.
func attrValue(page, marker, attr string) string {
	start := strings.Index(page, marker)
	if start < 0 {
		return ""
	}
	section := page[start:]
	if closing := strings.Index(section, "</"); closing > 0 {
		section = section[:closing]
	}
	attrStart := strings.Index(section, attr+`="`)
	if attrStart < 0 {
		return ""
	}
	value := section[attrStart+len(attr)+2:]
	end := strings.Index(value, `"`)
	if end <= 0 {
		return ""
	}
	return value[:end]
}
