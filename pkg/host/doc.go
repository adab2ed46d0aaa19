// Package host defines the read-only query interface the translator uses to
// inspect a solid model owned by a CAD host application. Every query may fail;
// callers decide the fallback at the call site.
package host
