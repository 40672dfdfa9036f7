// Package catalog turns raw caption records into Tracks.
//
// The string transforms here define the public identity of every track (its
// title, the slug used for every file and URL, and the description shown on
// the site) so they are pure and deterministic. Captions are NFC-normalized
// first so composed and decomposed accents derive the same slug.
//
// Plan applies the eligibility predicate, orders survivors newest first with
// ties kept in load order, and resolves slug collisions before any media work
// starts.
package catalog
