// Package extract pulls event data out of raw Facebook page text.
//
// Nothing here builds a DOM. Embedded JSON objects are located by scanning for
// fixed marker substrings and decoded in place, ignoring whatever page text
// follows them. Timestamps and event permalinks are read with regular
// expressions over the same text.
//
// Failures come in two kinds. A page whose shape no longer matches what the
// extraction rules expect yields an error wrapping ErrStructure. Optional data
// that is simply missing is reported as nil and is never an error.
package extract
