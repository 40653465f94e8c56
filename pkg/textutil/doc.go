// Package textutil holds the small text transformations the knowledge-base
// front end applies to model answers and links.
package textutil
