// Package track runs the extract, normalize and persist cycle over a list of
// video pages on a fixed interval.
package track
