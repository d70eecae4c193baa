// Package board reads kanban board exports into Card records.
//
// A board export is a tree of column wrappers, each carrying a header and a
// set of cards. The markup is reached through the Document interface, so the
// extractor works with any export format that can list columns, cards and
// their flattened text. HTMLDocument is the implementation for the HTML export.
//
// Cards without a "Received" date are dropped. The quoted price is optional.
// Nothing in this package fails on malformed input; missing structure simply
// produces fewer cards.
package board
