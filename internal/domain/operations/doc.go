// Package operations resolves which backend operations apply to a file or a
// selection and shapes the requests that execute them.
//
// The backend publishes a catalogue of operation descriptors. Each one
// declares whether it applies to files, directories or both, which
// extensions it accepts, whether it can act on several paths at once and
// which parameters the user must supply.
//
// Components:
//   - Catalogue: cached descriptor set, replaced wholesale on each load
//   - LegalOperations: predicate pipeline crossing descriptors with an entry
//   - BuildPayload / PrepareSubmission: request shaping and form validation
//   - Classify / IsTextFile / FormatSize: presentation helpers
//
// Example Usage:
//
//	cat := operations.NewCatalogue(client, logger)
//	if _, err := cat.Load(ctx); err != nil {
//	    // CatalogueUnavailable, retry later
//	}
//	legal := operations.LegalOperations(entry, cat.Operations(), false)
//	payload := operations.BuildPayload(legal[0], nil, entry)
package operations
