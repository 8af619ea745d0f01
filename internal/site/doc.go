// Package site holds the entity model of a build: Articles read from the
// source directory, Categories derived from their metadata, and the Index
// that orders them and links them for navigation.
//
// Page is a closed variant set. Code that needs per-variant behaviour
// switches on the concrete type:
//
//	switch p := page.(type) {
//	case *site.Article:
//	case *site.Category:
//	}
//
// The Index is an arena: pages live in one slice and navigation links are
// slice positions, so entities never hold pointers to each other.
package site
