// Package mpls decodes BDMV playlist (.mpls) files.
//
// A playlist lists the play items (clip segments) of one title, the
// sub-paths that run alongside them, the chapter and link marks, and
// optional extension payloads (picture-in-picture metadata and extra
// sub-paths). Decoder turns a file into a fully populated Playlist or fails
// without returning a partial record; soft anomalies such as unexpected
// codec tags are reported through the decoder's logger only.
package mpls
