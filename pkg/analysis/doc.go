// Package analysis defines the capabilities, result model, and error
// taxonomy shared by every provider adapter, along with the decoding rules
// that turn a model's text reply into a Result.
package analysis
