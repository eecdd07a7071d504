// Package hooast provides the background request-arbitration service of the
// Hooast wallet web extension.
//
// The service mediates between untrusted page origins and a privileged wallet
// authority guarded by user approval, with pluggable service layers such as:
//
//   - session  – volatile unlock state with an inactivity timer
//   - broker   – inbound RPC dispatch and origin authorization
//   - approval – pending-request registry and approval resolution
//   - wallet   – the wallet authority the broker calls into
//
// Hooast is designed to be embedded in the extension background process.
// Hosts typically interact via the high-level Service façade exposed by the
// root package:
//
//	srv := hooast.New()
//	response := srv.HandleMessage(ctx, origin, envelope)
//
// For more details see the individual sub-packages.
package hooast
