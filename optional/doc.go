// Package optional provides a generic Optional container for values that may
// be absent, with synchronous and context-aware asynchronous constructors.
package optional
