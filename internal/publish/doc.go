// Package publish uploads delivered track assets to object storage and
// points the manifest at the uploaded copies.
//
// Files under the collection directory with an audio or image extension are
// uploaded to "assets/<path relative to assets_dir>". The resulting
// local-to-public URL map is saved beside the manifest and applied to the
// manifest's file and coverArt fields. A failed upload is counted and logged;
// the remaining files are still attempted.
package publish
