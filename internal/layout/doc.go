// Package layout defines the document categories and the deterministic
// storage layout of the working tree.
//
// Every stored document lives at
//
//	RID_{record_id}/{year}/{category_folder}/{prefix}_{YYYY_MM_DD}.{ext}
//
// relative to the working root. [Derive] is a pure function of
// (record_id, category, date), so the tree layout never depends on
// manifest row order or on anything fetched from the network.
package layout
