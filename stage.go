package quill

// Stage names a step of [Builder.Build]. Stages run in declaration order.
type Stage string

const (
	StageDiscover            Stage = "discover"
	StageClassify            Stage = "classify"
	StageLoadConfig          Stage = "load-config"
	StageExtractBlogMetadata Stage = "extract-blog-metadata"
	StageBuildViewData       Stage = "build-view-data"
	StageCleanOutput         Stage = "clean-output"
	StageRenderRegularFiles  Stage = "render-regular-files"
	StageRenderBlogFiles     Stage = "render-blog-files"
	StageBuildPagination     Stage = "build-pagination"
	StageBuildFeed           Stage = "build-feed"
	StageWriteSitemap        Stage = "write-sitemap"
	StageDone                Stage = "done"
)

func (s Stage) String() string {
	return string(s)
}
