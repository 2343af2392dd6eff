package quill

import (
	"context"

	"github.com/soyart/quill/view"
)

// buildFeed renders the feed view with every post to FeedFile.
func (b *Builder) buildFeed(ctx context.Context) error {
	if !b.site.EnableBlog || b.site.RSSFeedView == "" {
		return nil
	}

	id := b.site.RSSFeedView
	t := Target{Name: FeedFile}
	data := b.data.ForPage(id, t.URL())

	return b.writeOut(ctx, []OutputFile{{
		target:     t,
		originator: id + view.Ext,
		kind:       "feed",
		render: func() ([]byte, error) {
			out, err := b.views.Render(id, data)
			if err != nil {
				return nil, failure(FailureRender, id+view.Ext, err)
			}
			return out, nil
		},
	}})
}
