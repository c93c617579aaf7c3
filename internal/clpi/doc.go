// Package clpi decodes BDMV clip-information (.clpi) files and answers
// seek queries against their entry-point maps.
//
// A clip-information file describes one M2TS clip: its recording
// attributes, the ATC/STC sequences that map packets to presentation time,
// the programs and elementary streams multiplexed into it, and the CPI
// block. The CPI block holds one entry-point map per PID, split into a
// small coarse table and a detailed fine table. EPMap reconstructs absolute
// entry points from that split and searches it in both directions.
package clpi
