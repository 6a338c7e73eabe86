// Package store gives widgets a uniform get/set/init contract over view
// state, backed either by the hash router or by memory.
//
// Widgets never talk to each other. They ask a Registry for a store by
// name, register their parameter schemas with Init, read with Get and
// write with Set or SetMany; every widget that initialized the same store
// is notified and re-renders from the store.
//
//	reg := store.NewRegistry(r, logger)
//	table := reg.GetOrCreate(store.OutletRouterStoreName)
//	release := table.Init(param.Schemas{
//	    param.Define("sort", param.OneOf("name", "name", "level")),
//	}, func() { rerender() })
//	defer release()
//
// Store names:
//   - RouterStore: parameters registered globally on the router; listeners
//     hear parameter and path changes.
//   - OutletRouterStore: parameters scoped to the current path; listeners
//     hear parameter changes only. Outlet widgets are rebuilt on path
//     change, so they do not need the path event.
//   - any other name: a SimpleStore that never reaches the URL.
package store
