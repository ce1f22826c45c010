// Package crawler walks every listing page of a region and assembles the
// discovered endpoints in page order.
package crawler

import (
	"context"

	"go.uber.org/zap"

	"github.com/muurk/argus/internal/directory"
	"github.com/muurk/argus/internal/logging"
	"github.com/muurk/argus/internal/pool"
)

// DefaultWorkers is the number of pages fetched in parallel
const DefaultWorkers = 5

// PageSource is the part of the directory the crawler depends on.
// *directory.Client satisfies it.
type PageSource interface {
	ResolveLastPage(ctx context.Context, code string, maxPages int) (int, error)
	FetchPage(ctx context.Context, code string, page int) ([]string, error)
}

// PageTask identifies one listing page to fetch
type PageTask struct {
	RegionCode string
	PageIndex  int
}

// PageResult holds the endpoints of one page. Err is set when the fetch
// failed, in which case Endpoints is empty.
type PageResult struct {
	Page      int
	Endpoints []string
	Err       error
}

// Result is the outcome of crawling one region
type Result struct {
	Region    string
	LastPage  int // -1 when the region has no listings
	Pages     []PageResult
	Endpoints []string // Page order, then document order; duplicates kept
}

// Failed returns the indices of pages whose fetch failed, ascending
func (r *Result) Failed() []int {
	var failed []int
	for _, p := range r.Pages {
		if p.Err != nil {
			failed = append(failed, p.Page)
		}
	}
	return failed
}

// Crawler fetches listing pages through a bounded worker pool
type Crawler struct {
	Source  PageSource
	Workers int

	// OnResolve is called by Crawl once the page range is known, with -1
	// for a region without listings. Optional.
	OnResolve func(lastPage int)

	// OnPage is called once per page in ascending page order, including
	// failed pages. Optional.
	OnPage func(PageResult)
}

// New creates a crawler with DefaultWorkers workers
func New(source PageSource) *Crawler {
	return &Crawler{Source: source, Workers: DefaultWorkers}
}

// Tasks returns one task per page index in [0, lastPage]
func Tasks(code string, lastPage int) []PageTask {
	if lastPage < 0 {
		return nil
	}
	tasks := make([]PageTask, lastPage+1)
	for i := range tasks {
		tasks[i] = PageTask{RegionCode: code, PageIndex: i}
	}
	return tasks
}

// FetchAllPages fetches pages 0 through lastPage inclusive and returns one
// result per page, indexed by page. A page that fails contributes an empty
// result with Err set; the remaining pages are unaffected. The returned
// error covers pool setup only.
func (c *Crawler) FetchAllPages(ctx context.Context, code string, lastPage int) ([]PageResult, error) {
	tasks := Tasks(code, lastPage)
	results := make([]PageResult, len(tasks))
	if len(tasks) == 0 {
		return results, nil
	}

	workers := c.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}
	p, err := pool.New(workers)
	if err != nil {
		return nil, err
	}
	defer p.Release()

	logging.Debug("Fetching listing pages",
		logging.Region(code),
		zap.Int("pages", len(tasks)),
		zap.Int("workers", p.Size()),
	)
	err = pool.Stream(ctx, p, tasks, c.fetch, func(i int, r PageResult) {
		results[i] = r
		if r.Err != nil {
			logging.LogPageFailure(code, r.Page, r.Err)
		}
		if c.OnPage != nil {
			c.OnPage(r)
		}
	})
	if err != nil {
		return nil, err
	}

	return results, nil
}

func (c *Crawler) fetch(ctx context.Context, _ int, task PageTask) PageResult {
	endpoints, err := c.Source.FetchPage(ctx, task.RegionCode, task.PageIndex)
	if err != nil {
		return PageResult{Page: task.PageIndex, Endpoints: []string{}, Err: err}
	}
	if endpoints == nil {
		endpoints = []string{}
	}
	logging.LogPageResult(task.RegionCode, task.PageIndex, len(endpoints))
	return PageResult{Page: task.PageIndex, Endpoints: endpoints}
}

// Aggregate concatenates page results in the order given
func Aggregate(pages []PageResult) []string {
	n := 0
	for _, p := range pages {
		n += len(p.Endpoints)
	}
	endpoints := make([]string, 0, n)
	for _, p := range pages {
		endpoints = append(endpoints, p.Endpoints...)
	}
	return endpoints
}

// Crawl resolves the page range of a region, capped by maxPages when
// positive, and fetches every page. A region without listings yields an
// empty result and no error.
func (c *Crawler) Crawl(ctx context.Context, code string, maxPages int) (*Result, error) {
	lastPage, err := c.Source.ResolveLastPage(ctx, code, maxPages)
	if directory.IsNoListings(err) {
		logging.Info("Region has no listings", logging.Region(code))
		if c.OnResolve != nil {
			c.OnResolve(-1)
		}
		return &Result{Region: code, LastPage: -1, Endpoints: []string{}}, nil
	}
	if err != nil {
		return nil, err
	}
	if c.OnResolve != nil {
		c.OnResolve(lastPage)
	}

	pages, err := c.FetchAllPages(ctx, code, lastPage)
	if err != nil {
		return nil, err
	}

	return &Result{
		Region:    code,
		LastPage:  lastPage,
		Pages:     pages,
		Endpoints: Aggregate(pages),
	}, nil
}
