// Package catalog is the read-only knowledge store of course records.
//
// A Catalog is built once at startup from a Source (embedded YAML, a file,
// a PostgreSQL table or an object in a MinIO bucket) and never changes
// afterwards. Lookups by ID, subject family and career tag are served from
// indexes built at load time.
//
// When loading fails the server keeps running with Unloaded(); every read
// then yields STORE_UNAVAILABLE through EnsureLoaded.
package catalog
