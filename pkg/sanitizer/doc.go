// Package sanitizer maps untrusted strings (client file names, directory
// overrides) onto safe filesystem identifiers.
//
// The functions are pure, allocation-light and safe for concurrent use.
//
//	sanitizer.SafeName("Q3 report (final)", 30) // "Q3_report__final_"
//	sanitizer.BaseName(`..\..\etc\passwd`)      // "passwd"
package sanitizer
