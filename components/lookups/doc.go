// Package lookups serves the option lists behind dynamic select fields.
// A field bound to a lookup table asks
//
//	GET {base}/lookups/{table}?q=&limit=
//
// and receives {"data":[{"value":"...","label":"..."}]}. Matches whose label
// starts with the query rank first; matching ignores case and accents.
package lookups
