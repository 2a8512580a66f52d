// Package pagination walks cursor-paginated research API endpoints.
//
// The research API paginates with a page number and a ShowNextPage
// boolean cursor: every page body carries an Items array and a
// ShowNextPage flag. Unlike header-based schemes there is no way to
// learn the total page count up front, so pages must be fetched in
// order; parallelism in this system lives one level up, across
// (group, designation) units rather than across pages.
//
// Example usage:
//
//	items, err := pagination.FetchAll(ctx, "/groups/", pagination.FetchFunc(
//		func(ctx context.Context, page int) (pagination.Page, error) {
//			return fetchGroupsPage(ctx, page)
//		}))
//
// FetchAll stops at the first page whose Items array is empty or absent,
// or whose ShowNextPage is false, whichever comes first; it never
// requests a page past that point.
package pagination
