package blog

import (
	"slices"
	"strconv"
)

const (
	PageDir        = "blog-page"
	PerPageDefault = 5
)

// Page is one chunk of the post listing.
// Empty Previous or Next means there is no such page.
type Page struct {
	Number   int
	Posts    []*Post
	Previous string
	Next     string
}

// PagePath returns the public path of the n-th (1-based) listing page.
func PagePath(n int) string {
	return "/" + PageDir + "/" + strconv.Itoa(n)
}

// Paginate splits posts into pages of perPage posts.
//
// The first page is the listing view itself, served at indexPath,
// and every later page n lives at [PagePath](n).
func Paginate(posts []*Post, perPage int, indexPath string) []Page {
	if perPage <= 0 {
		perPage = PerPageDefault
	}

	chunks := slices.Collect(slices.Chunk(posts, perPage))
	pages := make([]Page, len(chunks))
	for i := range chunks {
		page := Page{
			Number: i + 1,
			Posts:  chunks[i],
		}

		switch i {
		case 0:
		case 1:
			page.Previous = indexPath
		default:
			page.Previous = PagePath(i)
		}
		if i+1 < len(chunks) {
			page.Next = PagePath(i + 2)
		}

		pages[i] = page
	}

	return pages
}

// Newest returns posts, which are in discovery (oldest first) order,
// as a new slice ordered newest first.
func Newest(posts []*Post) []*Post {
	out := slices.Clone(posts)
	slices.Reverse(out)
	return out
}
