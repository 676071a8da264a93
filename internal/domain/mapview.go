package domain

// MapView is the initial viewport and base layer handed to the map renderer.
type MapView struct {
	Center      LatLng `json:"center"`
	Zoom        int    `json:"zoom"`
	TileURL     string `json:"tile_url"`
	Attribution string `json:"attribution"`
}

// MarkerLayer bundles everything the map renderer needs for one render pass.
type MarkerLayer struct {
	View        MapView            `json:"view"`
	Markers     []MarkerDescriptor `json:"markers"`
	Diagnostics []Diagnostic       `json:"diagnostics,omitempty"`
}
