// Package cli provides the interactive taskkeeper terminal client.
//
// It wires configuration, the local session database, the API services and
// a REPL with two views: the landing view (register, login) and the
// dashboard (paged task list and task commands). Whenever no valid session
// exists the app returns to the landing view. A background watcher probes
// the server and shows online/offline in the prompt.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
