package mpls

// Release drops every owned slice, children first. It is safe on a nil or
// partially decoded playlist and may be called any number of times.
func (p *Playlist) Release() {
	if p == nil {
		return
	}
	for i := range p.PlayItems {
		p.PlayItems[i].release()
	}
	p.PlayItems = nil
	releaseSubPaths(p.SubPaths)
	p.SubPaths = nil
	p.Marks = nil
	for i := range p.PiP {
		p.PiP[i].Data = nil
	}
	p.PiP = nil
	releaseSubPaths(p.ExtSubPaths)
	p.ExtSubPaths = nil
}

func (pi *PlayItem) release() {
	pi.Clips = nil
	pi.STN.release()
}

func (stn *STN) release() {
	for _, list := range []*[]Stream{&stn.Video, &stn.Audio, &stn.PG, &stn.PiPPG, &stn.IG, &stn.SecondaryAudio, &stn.SecondaryVideo} {
		for i := range *list {
			(*list)[i].AudioRefs = nil
			(*list)[i].PiPPGRefs = nil
			(*list)[i].Attr = nil
		}
		*list = nil
	}
}

func releaseSubPaths(paths []SubPath) {
	for i := range paths {
		for j := range paths[i].Items {
			paths[i].Items[j].Clips = nil
		}
		paths[i].Items = nil
	}
}
