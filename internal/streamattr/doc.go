// Package streamattr decodes the coding-type dependent attribute block shared
// by playlist stream entries and clip program streams.
//
// Each block starts with a length byte and a coding type. The coding type
// selects one of a handful of layouts (video, audio, graphics, text) which are
// surfaced as distinct Attr implementations; callers type-switch on the
// result instead of inspecting fields that do not apply.
package streamattr
