package schema

// Ports currently served by the schedule board. The first letter of each
// name doubles as its display code (B, G, I) in composed ETA values.
const (
	PortBusan     = "Busan"
	PortGwangyang = "Gwangyang"
	PortIncheon   = "Incheon"
)

var KnownPorts = []string{PortBusan, PortGwangyang, PortIncheon}

// ETAUnknown is the sentinel the schedule parser emits when a date cell is
// empty or unreadable.
const ETAUnknown = "-"

// ScheduleRecord is one vessel-port-voyage entry scraped from a pasted port
// schedule. Records are immutable once created; they are only ever bulk
// inserted per port and bulk deleted per port.
type ScheduleRecord struct {
	ID        string `json:"id,omitempty"`
	Port      string `json:"port" validate:"required,isKnownPort"`
	Vessel    string `json:"vessel" validate:"required"`
	ETA       string `json:"eta"`
	ETD       string `json:"etd"`
	Service   string `json:"service,omitempty"`
	CreatedAt string `json:"createdAt,omitempty"`
}
