// Package language maps the ISO 639-2 codes carried by playlist and clip
// stream entries to ISO 639-1 codes and display names.
//
// Common disc languages resolve through a fixed table that also accepts the
// bibliographic variants ("fre", "ger") some authoring tools write. Anything
// else falls back to the CLDR names shipped with golang.org/x/text.
package language
