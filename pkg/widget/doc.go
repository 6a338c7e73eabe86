// Package widget holds the server-side controllers of the station board.
//
// Widgets own no view state of their own beyond what cannot be shared:
// sort, direction, amount and filter live in a store.Store. Sort, direction
// and amount usually sit in the router stores and end up in the URL hash;
// the filter sits in a SimpleStore and stays out of it. A widget registers its
// schemas with Init when it is created and releases its store subscription
// with Close. Outlet rebuilds the widgets bound to the current path every
// time the path changes.
package widget
