// Package model defines the in-memory document model edited by the form
// builder: a Document holds an ordered list of Sections and every Section owns
// an ordered list of Fields laid out on a 12-column grid.
//
// Containers hold values, not pointers, so a Field belongs to exactly one
// Section at a time and moving it between sections is always a remove followed
// by an insert. Every structural mutation renormalises the dense, 1-based
// `Order` of the affected sections and clamps `ColumnSpan` into [1,12] at the
// point of mutation. Fields flagged as system fields expose a reduced mutation
// surface through UpdateField: protected attributes in a patch are ignored and
// the original values win.
package model
