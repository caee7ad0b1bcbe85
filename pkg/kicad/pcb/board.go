package pcb

// LayerByName looks up a layer in the board layer table by canonical or
// user name.
func (b *Board) LayerByName(name string) (Layer, bool) {
	for _, l := range b.Layers {
		if l.Name == name || (l.UserName != "" && l.UserName == name) {
			return l, true
		}
	}
	return Layer{}, false
}

// IsLayerEnabled reports whether the layer is part of the board stackup.
// KiCad only writes enabled layers into the (layers ...) table.
func (b *Board) IsLayerEnabled(name string) bool {
	_, ok := b.LayerByName(name)
	return ok
}

// CopperLayerCount returns the number of copper layers in the stackup.
func (b *Board) CopperLayerCount() int {
	n := 0
	for _, l := range b.Layers {
		if l.IsCopper() {
			n++
		}
	}
	return n
}

// FootprintByReference returns the first footprint with the given reference.
func (b *Board) FootprintByReference(ref string) (*Footprint, bool) {
	for i := range b.Footprints {
		if b.Footprints[i].Reference == ref {
			return &b.Footprints[i], true
		}
	}
	return nil, false
}
