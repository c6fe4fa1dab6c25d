// Package connect provides the social connection core for the post
// scheduling application: an OAuth2 connect/refresh/disconnect manager
// for linking one Instagram account per application user, and a
// capability coordinator that probes every external backend at startup
// and derives the demo/production operating mode the rest of the system
// uses to gate live versus simulated behavior.
//
// Connection lifecycle:
//   - Users carry at most one Connection sub-record, owned by the
//     profile store. Every operation re-reads the record before
//     mutating and writes it back whole; nothing is persisted until the
//     terminal success step.
//   - The connection manager in the connection package drives the flow:
//     authorize through a single-shot awaitable (popup, redirect
//     listener, deep link), exchange the code under a strict single-use
//     state token check, fetch the remote profile, persist.
//
// Operating mode:
//   - The capability package probes the storage backend, the Instagram
//     OAuth configuration, the Unsplash image search, and the (always
//     simulated) payment system, and folds the reports into one
//     SystemStatus. Probe failures never propagate; each dependency
//     degrades to demo or error on its own.
package connect
