// Package report aggregates board cards into the Scope, Lane, All Labels and
// Quoted Prices tables.
//
// Scope and All Labels work on the cards outside the excluded columns and
// match labels as case-insensitive substrings of the card text; every
// configured label gets a row even when nothing matches. Lanes match the
// column name exactly and a lane without cards gets no row. Quoted Prices
// sums the priced cards of three populations: active, won and lost.
//
// Every average is rounded to two decimals, ties to even.
package report
