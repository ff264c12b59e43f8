// Package romconfig loads and validates the declarative ROM-set config
// document, resolves each ROM's source bytes (local file, HTTPS fetch
// with bounded retry, or a named member inside a zip archive), and
// applies the offset/duplicate/pad/truncate transform pipeline, yielding
// canonical per-ROM source bytes ready for the mangler.
//
// # Source resolution
//
// Network and filesystem access is behind the SourceFetcher interface so
// tests can inject an in-memory fetcher without touching a real network
// or disk: production code depends on an interface, not a concrete
// transport.
//
// Example:
//
//	doc, err := romconfig.Load(ctx, raw, romconfig.NewHTTPFetcher())
//	if err != nil {
//	    log.Fatal(err)
//	}
package romconfig
