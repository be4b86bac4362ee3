// Package listing implements the paginated, mode-aware directory listing
// state machine.
//
// An Engine owns the entries of the current query and moves through
// Idle → Loading → {Loaded, Errored}. Every query change starts a new
// generation; a response that arrives for an older generation is dropped
// so a slow page can never be appended to a newer listing.
package listing
