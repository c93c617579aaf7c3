package clpi

// Release drops every owned slice, children first. It is safe on a nil or
// partially decoded record and may be called any number of times.
func (ci *ClipInfo) Release() {
	if ci == nil {
		return
	}
	ci.Clip.ATCDeltas = nil
	for i := range ci.ATCSeqs {
		ci.ATCSeqs[i].STC = nil
	}
	ci.ATCSeqs = nil
	for i := range ci.Programs {
		for j := range ci.Programs[i].Streams {
			ci.Programs[i].Streams[j].Attr = nil
		}
		ci.Programs[i].Streams = nil
	}
	ci.Programs = nil
	for i := range ci.CPI.EPMaps {
		ci.CPI.EPMaps[i].Coarse = nil
		ci.CPI.EPMaps[i].Fine = nil
	}
	ci.CPI.EPMaps = nil
}
