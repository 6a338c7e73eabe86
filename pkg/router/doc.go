// Package router keeps a view's path and its parameters in sync with the
// URL hash.
//
// A Router owns the current path, a parameter namespace per path and two
// schema registries: global schemas that apply under every path, and
// outlet schemas that apply only under the path that was current when
// they were registered. An outlet schema wins over a global schema of the
// same name.
//
// The hash is the single source of truth that users bookmark and share.
// Writes go through a History:
//
//   - Navigate, SetParam and SetManyParams push one entry each.
//   - Normalizing the starting hash and reconciling an external hashchange
//     (back/forward, manual edit) replace the current entry.
//
// Listeners registered with OnPathChange and OnParamChange run
// synchronously, in registration order, after the hash has been written,
// so a listener calling GetParam observes the new value.
//
// # Concurrency
//
// A Router is not safe for concurrent use. It is meant to be confined to
// the goroutine that handles one session's events, which mirrors the
// single-threaded event loop it models. Create one Router per session.
//
// # Example
//
//	hist := router.NewMemoryHistory("#rhein?dir=sideways")
//	r := router.New(hist.Current(), router.WithHistory(hist))
//	r.RegisterParam("dir", param.OneOf("asc", "asc", "desc"), false)
//	r.Configure([]string{"#rhein", "#elbe"})
//
//	dir, _ := r.GetParam("dir") // "asc"; hash rewritten to "#rhein"
package router
