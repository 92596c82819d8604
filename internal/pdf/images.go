package pdf

import (
	"github.com/ledongthuc/pdf"
)

// countImages counts image XObjects across every page of an open document.
// Loading a page from a malformed page tree can panic inside the reader, so
// the loop recovers and reports the pages counted up to that point.
func countImages(r *pdf.Reader) (total int) {
	defer func() {
		if recover() != nil {
			// Keep the pages counted so far.
		}
	}()

	for pageNum := 1; pageNum <= r.NumPage(); pageNum++ {
		total += pageImageCount(r.Page(pageNum))
	}
	return total
}

// pageImageCount counts the image XObjects in a single page's resource
// dictionary. Malformed resource entries can panic inside the reader, so the
// walk recovers and keeps the count accumulated so far.
func pageImageCount(page pdf.Page) (count int) {
	defer func() {
		if recover() != nil {
			// Keep whatever was counted before the walk blew up.
		}
	}()

	if page.V.IsNull() {
		return 0
	}

	resources := page.V.Key("Resources")
	if resources.IsNull() {
		return 0
	}

	xObjects := resources.Key("XObject")
	if xObjects.IsNull() || xObjects.Kind() != pdf.Dict {
		return 0
	}

	for _, key := range xObjects.Keys() {
		obj := xObjects.Key(key)
		if obj.IsNull() {
			continue
		}
		if obj.Key("Subtype").Name() == "Image" {
			count++
		}
	}
	return count
}
