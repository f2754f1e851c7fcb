// Package indexing builds and maintains the postings index that backs
// indexed retrieval. Tokenization is shared with query classification, so
// the index vocabulary and the search vocabulary never drift apart.
// Incremental runs resume from a stored checkpoint; a rebuild drops the
// index and starts over.
package indexing
