// Package reembed provides maintenance re-embedding of stored chunks with a
// new or updated embedding model.
//
// The Reembedder pages through every live chunk in the repository, regenerates
// its vector, and upserts it back under the same id. Tombstoned records and
// chunk versions are left untouched. The package also houses the shared
// RetryWithBackoff helper and a progress tracker for long-running runs.
package reembed
