// Package validate implements the round-trip validator (C9): given a
// parsed image and the loaded ROM sets it was composed from, it walks
// every (address, CS, X) tuple of each mangled table, demangles the byte
// at that tuple's index, and reports any mismatch against the source byte
// of the ROM the tuple activates, or against the fill byte when it
// activates none.
//
// A validator run never touches the config document's source references
// again; it trusts the LoadedRomSet the caller already resolved, so it
// catches composer/parser/mangler bugs without depending on network
// access or archive extraction succeeding a second time.
package validate
