// Package session ties the listing engine, navigation, the operation
// catalogue and the selection together into one browsing session.
//
// A Session is the explicit context object a front end drives: it
// navigates, loads pages, builds per-entry action menus, dispatches the
// chosen action and gates destructive operations behind a Confirmer. The
// upload, edit and download bridges live here as well because they act
// on the current path and refresh the listing when they succeed.
//
// Example Usage:
//
//	s := session.New(client, confirmer, store, session.Options{Logger: logger})
//	if err := s.Start(ctx); err != nil {
//	    logger.Warn("session started degraded", zap.Error(err))
//	}
//	menu := s.BuildActionMenu(entry, false, session.ScopeLocal)
//	outcome, err := s.Dispatch(ctx, menu[0].ID, entry)
package session
