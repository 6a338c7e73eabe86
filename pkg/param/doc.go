// Package param declares how a single named view parameter is parsed,
// validated and defaulted.
//
// A Schema is plain data: a total Parser, a Validator and a Default value.
// Routers and stores run every raw value through Schema.Resolve before it
// reaches state, so a malformed or forged value never becomes visible:
//
//	schemas := param.Schemas{
//	    param.Define("sort", param.OneOf("name", "name", "level")),
//	    param.Define("dir", param.OneOf("asc", "asc", "desc")),
//	    param.Define("amount", param.IntIn(25, 25, 50, 100)),
//	}
//
// Parsers never panic on bad input. Input that cannot be parsed becomes
// Invalid, which every validator rejects.
//
// Schemas can also be declared in configuration and compiled with Compile,
// where the validator is an expr-lang expression over `value`:
//
//	param.Decl{Name: "station", Type: "string", Validate: `value matches "^[0-9]+$"`}
package param
