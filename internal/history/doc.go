// Package history keeps a SQLite journal of what each launcher run did:
// one row per application stage outcome and one per triggered render. The
// status and history commands read it back.
package history
