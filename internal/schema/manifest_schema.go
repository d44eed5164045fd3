package schema

// Column headers of the uploaded manifest sheet that map onto fixed fields.
// Any other column travels through the Extra map untouched.
const (
	HeaderClient     = "Client"
	HeaderVesselName = "Vessel Name"
	HeaderSupplier   = "Supplier"
	HeaderShipper    = "Shipper"
	HeaderPONo       = "PO No"
	HeaderETA        = "ETA"
	HeaderStored     = "Stored"
)

// ManifestRow is one logistics line item of the master database. Rows parsed
// from an uploaded sheet have no ID until they are saved; rows loaded from
// storage carry their durable ID. IsMapped is true only while ETA holds a
// value written by the schedule matching pass.
type ManifestRow struct {
	ID         string            `json:"id,omitempty"`
	Client     string            `json:"client,omitempty"`
	VesselName string            `json:"vesselName"`
	Supplier   string            `json:"supplier,omitempty"`
	Shipper    string            `json:"shipper,omitempty"`
	PONo       string            `json:"poNo,omitempty"`
	ETA        string            `json:"eta,omitempty"`
	Stored     string            `json:"stored,omitempty"`
	IsMapped   bool              `json:"isMapped"`
	UploadDate string            `json:"uploadDate,omitempty"`
	Extra      map[string]string `json:"extra,omitempty"`
}

// Persisted returns true when the row carries a durable identifier.
func (r *ManifestRow) Persisted() bool {
	return r.ID != ""
}

// RowUpdate is one entry of the batched partial update emitted by the
// mapping pass. Only persisted rows produce one.
type RowUpdate struct {
	ID       string `json:"id"`
	ETA      string `json:"eta"`
	IsMapped bool   `json:"isMapped"`
}

// VesselLog is one activity log entry, also used as the storage liveness probe.
type VesselLog struct {
	ID         string `json:"id,omitempty"`
	VesselName string `json:"vesselName"`
	Status     string `json:"status"`
	LoggedAt   string `json:"loggedAt"`
}
