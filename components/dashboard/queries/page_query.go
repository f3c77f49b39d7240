package queries

import (
	"context"

	gocommand "github.com/goliatone/go-command"

	dashboard "github.com/goliatone/go-bizdash/components/dashboard"
)

type pageService interface {
	LoadPage(ctx context.Context, req dashboard.PageRequest) (dashboard.PageView, error)
	Pages(ctx context.Context, locale string) []dashboard.PageSummary
}

// PageQuery loads a page view.
type PageQuery struct {
	service pageService
}

// NewPageQuery builds the query.
func NewPageQuery(service pageService) *PageQuery {
	return &PageQuery{service: service}
}

var _ gocommand.Querier[dashboard.PageRequest, dashboard.PageView] = (*PageQuery)(nil)

// Query loads the requested page. The view is returned alongside
// dashboard.ErrStaleResponse when a newer load overtook this one.
func (q *PageQuery) Query(ctx context.Context, req dashboard.PageRequest) (dashboard.PageView, error) {
	return q.service.LoadPage(ctx, req)
}

// PageListQuery lists the pages available for a locale.
type PageListQuery struct {
	service pageService
}

// NewPageListQuery builds the query.
func NewPageListQuery(service pageService) *PageListQuery {
	return &PageListQuery{service: service}
}

var _ gocommand.Querier[dashboard.ViewerContext, []dashboard.PageSummary] = (*PageListQuery)(nil)

// Query returns the page summaries localized for the viewer.
func (q *PageListQuery) Query(ctx context.Context, viewer dashboard.ViewerContext) ([]dashboard.PageSummary, error) {
	return q.service.Pages(ctx, viewer.Locale), nil
}
