// Package quill builds static sites from a content tree of templates,
// Markdown pages, blog posts and assets.
package quill

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/soyart/quill/blog"
	"github.com/soyart/quill/cache"
	"github.com/soyart/quill/config"
	"github.com/soyart/quill/markup"
	"github.com/soyart/quill/metrics"
	"github.com/soyart/quill/view"
)

const (
	DirIncludes = view.DirIncludes
	DirBlog     = "_blog"
	IgnoreFile  = ".quillignore"
	FeedFile    = "feed.rss"
	SitemapFile = "sitemap.xml"

	DirContentDefault = "source"
	DirOutputDefault  = "public"
	DirCacheDefault   = "_cache"
	DirConfigDefault  = "."
)

// Paths are the directories a build reads from and writes to.
type Paths struct {
	Content string
	Output  string
	Cache   string
	Config  string
}

// Result summarizes a successful build.
type Result struct {
	BuildID string
	Written []string // Slash-separated output paths, sorted
	Posts   int
}

// Builder runs the build pipeline of one site.
// A Builder may be reused, but not concurrently.
type Builder struct {
	paths   Paths
	env     string
	options options

	logger   *slog.Logger
	recorder metrics.Recorder

	ignores   Ignorer
	files     []SourceFile
	regular   []SourceFile
	blogFiles []SourceFile
	site      *config.Site
	md        markup.Converter
	views     *view.Engine
	cache     *cache.Store
	cleaned   bool
	posts     []*blog.Post
	pages     []blog.Page
	targets   map[string]Target
	data      view.Data
	written   *written
}

// New returns a [Builder] for env. Empty paths fall back to defaults.
func New(paths Paths, env string, opts ...Option) (*Builder, error) {
	paths, err := prepare(paths)
	if err != nil {
		return nil, failure(FailureConfig, "", err)
	}
	if env == "" {
		env = config.EnvDefault
	}

	b := &Builder{
		paths: paths,
		env:   env,
		options: options{
			workers:  WorkersDefault,
			logger:   slog.Default(),
			recorder: metrics.NoopRecorder{},
		},
	}

	for i := range opts {
		opts[i](b)
	}

	return b, nil
}

func (b *Builder) Paths() Paths { return b.paths }

// Build runs every stage in order, stopping at the first failure.
// Errors from stages are *[BuildError], unless ctx is done.
func (b *Builder) Build(ctx context.Context) (Result, error) {
	start := time.Now()
	buildID := uuid.NewString()
	b.reset(buildID)

	stages := []struct {
		stage Stage
		run   func(context.Context) error
	}{
		{stage: StageDiscover, run: b.discover},
		{stage: StageClassify, run: b.classify},
		{stage: StageLoadConfig, run: b.loadConfig},
		{stage: StageExtractBlogMetadata, run: b.extractBlogMetadata},
		{stage: StageBuildViewData, run: b.buildViewData},
		{stage: StageCleanOutput, run: b.cleanOutput},
		{stage: StageRenderRegularFiles, run: b.renderRegularFiles},
		{stage: StageRenderBlogFiles, run: b.renderBlogFiles},
		{stage: StageBuildPagination, run: b.buildPagination},
		{stage: StageBuildFeed, run: b.buildFeed},
		{stage: StageWriteSitemap, run: b.writeSitemap},
	}

	for _, s := range stages {
		if err := ctx.Err(); err != nil {
			return Result{}, b.fail(s.stage, err)
		}

		t := time.Now()
		err := s.run(ctx)
		elapsed := time.Since(t)
		b.recorder.ObserveStageDuration(s.stage.String(), elapsed)
		if err != nil {
			return Result{}, b.fail(s.stage, err)
		}

		b.logger.Info("stage done", "stage", s.stage, "duration_ms", elapsed.Milliseconds())
	}

	pruned, err := b.cache.Prune()
	if err != nil {
		return Result{}, b.fail(StageDone, failure(FailureIO, b.paths.Cache, err))
	}
	b.logger.Debug("pruned cache", "dir", b.paths.Cache, "removed", pruned)

	b.recorder.ObserveBuildDuration(time.Since(start))
	b.recorder.IncBuildOutcome(metrics.OutcomeSuccess)

	written := b.written.sorted()
	b.logger.Info("build done",
		"stage", StageDone,
		"files", len(written),
		"posts", len(b.posts),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return Result{
		BuildID: buildID,
		Written: written,
		Posts:   len(b.posts),
	}, nil
}

func (b *Builder) reset(buildID string) {
	b.logger = b.options.logger.With("build_id", buildID)
	b.recorder = b.options.recorder
	b.ignores = nil
	b.files, b.regular, b.blogFiles = nil, nil, nil
	b.site, b.md, b.views, b.cache = nil, nil, nil, nil
	b.cleaned = false
	b.posts, b.pages = nil, nil
	b.targets = make(map[string]Target)
	b.data = view.Data{}
	b.written = new(written)
}

// fail attributes err to stage, classifying unclassified errors as I/O failures
func (b *Builder) fail(stage Stage, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		b.recorder.IncBuildOutcome(metrics.OutcomeCanceled)
		b.logger.Warn("build canceled", "stage", stage, "error", err)
		return fmt.Errorf("build canceled at stage %s: %w", stage, err)
	}

	var e *BuildError
	if !errors.As(err, &e) {
		e = &BuildError{Failure: FailureIO, Err: err}
		err = e
	}
	if e.Stage == "" {
		e.Stage = stage
	}

	b.recorder.IncBuildOutcome(metrics.OutcomeFailed)
	b.logger.Error("build failed", "stage", stage, "failure", e.Failure, "file", e.Path, "error", e.Err)

	return err
}

func (b *Builder) discover(_ context.Context) error {
	ignores, err := ParseIgnore(filepath.Join(b.paths.Content, IgnoreFile))
	if err != nil {
		return failure(FailureConfig, IgnoreFile, err)
	}

	b.ignores = ignores
	b.files, err = Discover(b.paths.Content, ignores)
	if err != nil {
		return failure(FailureIO, b.paths.Content, err)
	}

	b.logger.Debug("discovered files", "count", len(b.files))
	return nil
}

func (b *Builder) classify(_ context.Context) error {
	for i := range b.files {
		if b.files[i].Blog {
			b.blogFiles = append(b.blogFiles, b.files[i])
			continue
		}
		b.regular = append(b.regular, b.files[i])
	}

	b.logger.Debug("classified files", "regular", len(b.regular), "blog", len(b.blogFiles))
	return nil
}

func (b *Builder) loadConfig(_ context.Context) error {
	site, err := config.Load(b.paths.Config, b.env, b.options.overrides)
	if err != nil {
		return failure(FailureConfig, config.FileName(b.env), err)
	}

	md, err := markup.New(site.Markdown)
	if err != nil {
		return failure(FailureConfig, config.KeyMarkdown, err)
	}

	views, err := view.Load(b.paths.Content, view.Funcs(site.BaseURL, md), b.ignores)
	if err != nil {
		var viewErr *view.Error
		if errors.As(err, &viewErr) {
			return failure(FailureRender, viewErr.View+view.Ext, err)
		}
		return failure(FailureIO, b.paths.Content, err)
	}

	if site.EnableBlog {
		if !views.Exists(site.PostsListView) {
			return failure(FailureConfig, config.KeyPostsListView, fmt.Errorf("%w '%s'", view.ErrUnknownView, site.PostsListView))
		}
		if site.RSSFeedView != "" && !views.Exists(site.RSSFeedView) {
			return failure(FailureConfig, config.KeyRSSFeedView, fmt.Errorf("%w '%s'", view.ErrUnknownView, site.RSSFeedView))
		}
	}

	store, err := cache.Open(b.paths.Cache)
	if err != nil {
		return failure(FailureIO, b.paths.Cache, err)
	}

	b.site, b.md, b.views, b.cache = site, md, views, store
	b.logger.Debug("loaded config", "env", b.env, "blog", site.EnableBlog, "markdown", md.Name())

	return nil
}

func (b *Builder) extractBlogMetadata(_ context.Context) error {
	if !b.site.EnableBlog {
		return nil
	}

	base := view.Data{Config: b.site.Values}
	posts := make([]*blog.Post, 0, len(b.blogFiles))
	for _, f := range b.blogFiles {
		t, err := b.handlerFor(f).target(f)
		if err != nil {
			return err
		}
		b.targets[f.Rel] = t

		if f.Kind == KindAsset {
			continue
		}

		x := blog.Extractor{
			DateFormat: b.site.DateFormat,
			Views:      b.views,
			Convert: func(doc markup.Document) ([]byte, error) {
				return b.compile(f, doc)
			},
		}
		src := blog.Source{
			Rel:  f.Rel,
			Name: f.Name(),
			Path: t.URL(),
		}

		var post *blog.Post
		switch f.Kind {
		case KindMarkup:
			raw, err := f.Read()
			if err != nil {
				return failure(FailureIO, f.Rel, err)
			}
			post, err = x.FromMarkup(src, raw)
			if err != nil {
				return failure(FailureRender, f.Rel, err)
			}

		case KindTemplate:
			post, err = x.FromTemplate(src, f.ViewID(), base.ForPage(f.ViewID(), src.Path))
			if err != nil {
				return failure(FailureRender, f.Rel, err)
			}
		}

		posts = append(posts, post)
	}

	b.posts = blog.Newest(posts)
	b.logger.Debug("extracted blog metadata", "posts", len(b.posts))

	return nil
}

func (b *Builder) buildViewData(_ context.Context) error {
	for _, f := range b.regular {
		t, err := b.handlerFor(f).target(f)
		if err != nil {
			return err
		}
		b.targets[f.Rel] = t
	}

	if b.site.EnableBlog {
		b.pages = blog.Paginate(b.posts, b.site.PostsPerPage, b.indexPath())
	}

	owners := b.generated()
	for _, f := range b.renderable() {
		rel := b.targets[f.Rel].Rel()
		if other, ok := owners[rel]; ok {
			return failure(FailureNaming, f.Rel, fmt.Errorf("output %s is also produced by %s", rel, other))
		}
		owners[rel] = f.Rel
	}

	b.data = view.Data{
		Config:    b.site.Values,
		BlogPosts: b.posts,
	}

	return nil
}

// generated returns the outputs of the stages after the render stages,
// keyed by output path
func (b *Builder) generated() map[string]string {
	owners := make(map[string]string, len(b.targets)+len(b.pages)+2)
	if b.site.EnableBlog {
		for _, page := range b.pages[min(1, len(b.pages)):] {
			owners[pageTarget(page.Number).Rel()] = "listing page " + strconv.Itoa(page.Number)
		}
		if b.site.RSSFeedView != "" {
			owners[FeedFile] = "feed"
		}
	}
	if b.site.Sitemap && b.site.BaseURL != "" {
		owners[SitemapFile] = "sitemap"
	}

	return owners
}

func (b *Builder) cleanOutput(_ context.Context) error {
	if err := cleanDir(b.paths.Output); err != nil {
		return failure(FailureIO, b.paths.Output, err)
	}
	if b.options.force {
		if err := b.cache.Clear(); err != nil {
			return failure(FailureIO, b.paths.Cache, err)
		}
		b.logger.Info("cleared cache", "dir", b.paths.Cache)
	}

	b.cleaned = true
	return nil
}

func (b *Builder) renderRegularFiles(ctx context.Context) error {
	return b.writeOut(ctx, b.outputs(b.regular))
}

func (b *Builder) renderBlogFiles(ctx context.Context) error {
	if !b.site.EnableBlog {
		return nil
	}
	return b.writeOut(ctx, b.outputs(b.blogFiles))
}

// buildPagination writes every listing page after the first,
// which is the listing view itself.
func (b *Builder) buildPagination(ctx context.Context) error {
	if !b.site.EnableBlog || len(b.pages) < 2 {
		return nil
	}

	id := b.site.PostsListView
	outputs := make([]OutputFile, 0, len(b.pages)-1)
	for _, page := range b.pages[1:] {
		urlPath := blog.PagePath(page.Number)
		data := b.data.
			ForPage(id, urlPath).
			WithPagination(page.Posts, page.Previous, page.Next)

		outputs = append(outputs, OutputFile{
			target:     pageTarget(page.Number),
			originator: id + view.Ext,
			kind:       "pagination",
			render: func() ([]byte, error) {
				out, err := b.views.Render(id, data)
				if err != nil {
					return nil, failure(FailureRender, id+view.Ext, err)
				}
				return out, nil
			},
		})
	}

	return b.writeOut(ctx, outputs)
}

func pageTarget(n int) Target {
	return Target{Dir: strings.TrimPrefix(blog.PagePath(n), "/"), Name: IndexFile}
}

// renderable returns files written by the render stages
func (b *Builder) renderable() []SourceFile {
	if !b.site.EnableBlog {
		return b.regular
	}

	all := make([]SourceFile, 0, len(b.regular)+len(b.blogFiles))
	all = append(all, b.regular...)
	return append(all, b.blogFiles...)
}

func (b *Builder) outputs(files []SourceFile) []OutputFile {
	outputs := make([]OutputFile, len(files))
	for i, f := range files {
		h := b.handlerFor(f)
		t := b.targets[f.Rel]
		data := b.dataFor(f, t)

		perm := permOutput
		if f.Kind == KindAsset {
			perm = f.Mode.Perm()
		}

		kind := f.Kind.String()
		if f.Blog && f.Kind != KindAsset {
			kind = "post"
		}

		outputs[i] = OutputFile{
			target:     t,
			originator: f.Rel,
			kind:       kind,
			perm:       perm,
			render: func() ([]byte, error) {
				return h.render(f, data)
			},
		}
	}

	return outputs
}

// dataFor specializes the shared view data for f. The listing view
// gets the first page of posts.
func (b *Builder) dataFor(f SourceFile, t Target) view.Data {
	data := b.data.ForPage(f.ViewID(), t.URL())
	if f.Kind != KindTemplate || !b.site.EnableBlog || f.ViewID() != b.site.PostsListView {
		return data
	}
	if len(b.pages) == 0 {
		return data
	}

	return data.WithPagination(b.pages[0].Posts, b.pages[0].Previous, b.pages[0].Next)
}

// indexPath returns the public path of the listing view
func (b *Builder) indexPath() string {
	return Resolve(b.site.PostsListView+view.Ext, KindTemplate).URL()
}

// compile converts a markup document body through the cache store.
// Until a forced build has cleared the store, the store is bypassed.
func (b *Builder) compile(f SourceFile, doc markup.Document) ([]byte, error) {
	if b.options.force && !b.cleaned {
		return b.md.Convert(doc.Body)
	}

	key := cache.Key(b.md.Name(), doc.FrontMatter, doc.Body)
	data, hit, err := b.cache.Load(key, f.ModTime, func() ([]byte, error) {
		return b.md.Convert(doc.Body)
	})
	if err != nil {
		return nil, err
	}

	b.recorder.IncCacheResult(hit)
	return data, nil
}

// prepare validates paths. Output and content must not contain each other,
// since output is cleaned before every build.
func prepare(paths Paths) (Paths, error) {
	if paths.Content == "" {
		paths.Content = DirContentDefault
	}
	if paths.Output == "" {
		paths.Output = DirOutputDefault
	}
	if paths.Cache == "" {
		paths.Cache = DirCacheDefault
	}
	if paths.Config == "" {
		paths.Config = DirConfigDefault
	}

	paths.Content = filepath.Clean(paths.Content)
	paths.Output = filepath.Clean(paths.Output)
	paths.Cache = filepath.Clean(paths.Cache)
	paths.Config = filepath.Clean(paths.Config)

	content, err := filepath.Abs(paths.Content)
	if err != nil {
		return paths, err
	}
	output, err := filepath.Abs(paths.Output)
	if err != nil {
		return paths, err
	}
	cacheDir, err := filepath.Abs(paths.Cache)
	if err != nil {
		return paths, err
	}

	switch {
	case output == filepath.Dir(output):
		return paths, fmt.Errorf("output dir is a filesystem root: '%s'", paths.Output)
	case within(output, content):
		return paths, fmt.Errorf("content dir '%s' is inside output dir '%s'", paths.Content, paths.Output)
	case within(content, output):
		return paths, fmt.Errorf("output dir '%s' is inside content dir '%s'", paths.Output, paths.Content)
	case within(content, cacheDir), within(output, cacheDir):
		return paths, fmt.Errorf("cache dir '%s' must be outside content and output dirs", paths.Cache)
	}

	stat, err := os.Stat(paths.Content)
	if err != nil {
		return paths, fmt.Errorf("failed to stat content dir '%s': %w", paths.Content, err)
	}
	if !stat.IsDir() {
		return paths, fmt.Errorf("content path '%s' is not a directory", paths.Content)
	}

	return paths, nil
}

// within reports whether path is dir or is under dir
func within(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}
