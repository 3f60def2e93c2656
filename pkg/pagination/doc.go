// Package pagination provides the paginated list controller that drives
// incremental loading of the photo collection for a presentation layer.
//
// The controller owns the List State of one view session: the accumulated
// photos, the next page number, the loading flag, the last error and
// whether more pages exist. A view triggers LoadNextPage on scroll or on an
// explicit "load more" action and renders State.
//
// Example usage:
//
//	photos, _ := client.New(client.DefaultConfig())
//	ctrl := pagination.NewController(photos, pagination.DefaultConfig())
//	ctrl.LoadNextPage(ctx)
//	st := ctrl.State()
//
// Per page-fetch cycle the controller moves Idle -> Loading -> Idle, ending
// in one of: success with more pages, success with the list exhausted, or
// error. There is no terminal state.
//
// At most one list fetch is in flight; a LoadNextPage call made while one is
// running returns false and changes nothing. Detail fetches never touch the
// List State and may run concurrently with anything.
package pagination
