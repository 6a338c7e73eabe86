// Package errors provides structured, actionable errors for pegelboard.
//
// Every error carries a category and, for known conditions, a registered
// code that maps to a short message, a longer explanation and a hint:
//
//	err := errors.New("P101").
//	    WithDetail("Navigate(\"#elbe\") was called on a fresh router").
//	    WithSuggestion("Call Configure with the allowed waters first")
//
//	fmt.Println(err.Format())
//	// ERROR P101: No allowed paths configured
//	//
//	//   Navigate("#elbe") was called on a fresh router
//	//
//	//   Hint: Call Configure with the allowed waters first
//
// # Error Categories
//
//   - config: configuration file errors (missing, malformed, invalid)
//   - router: wiring mistakes in router usage
//   - source: station data source failures
//   - protocol: session socket errors (bad frames, unknown messages)
//   - cli: command line usage errors
//
// Errors produced here support errors.Is and errors.As through Unwrap and Is.
package errors
