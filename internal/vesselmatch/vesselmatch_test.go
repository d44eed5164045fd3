package vesselmatch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"manifesthub/internal/schema"
)

func TestNormalize(t *testing.T) {
	t.Run("strips punctuation and uppercases", func(t *testing.T) {
		assert.Equal(t, "MSCBUSAN123", Normalize("MSC Busan 123!"))
	})

	t.Run("idempotent", func(t *testing.T) {
		for _, in := range []string{"MSC Busan 123!", "msc-busan", "  HMM Algeciras  ", "", "漢江"} {
			once := Normalize(in)
			assert.Equal(t, once, Normalize(once), "input %q", in)
		}
	})

	t.Run("empty and non-alphanumeric inputs yield empty key", func(t *testing.T) {
		assert.Equal(t, "", Normalize(""))
		assert.Equal(t, "", Normalize("  ---  "))
	})
}

func TestAggregate(t *testing.T) {
	records := []schema.ScheduleRecord{
		{Port: schema.PortBusan, Vessel: "MSC Busan", ETA: "2026-02-17"},
		{Port: schema.PortGwangyang, Vessel: "msc-busan", ETA: "2026-02-15"},
	}
	groups := Aggregate(records)

	require.Len(t, groups, 1)
	group, ok := groups["MSCBUSAN"]
	require.True(t, ok, "both spellings should collapse onto MSCBUSAN")
	assert.Equal(t, []string{"2026-02-17", "2026-02-15"}, group.Dates)
	assert.Equal(t, map[string]struct{}{
		schema.PortBusan:     {},
		schema.PortGwangyang: {},
	}, group.Ports)
	assert.Equal(t, "MSC Busan", group.OriginalName, "first-seen spelling wins")
}

func TestAggregateSkipsSentinelsAndEmptyNames(t *testing.T) {
	records := []schema.ScheduleRecord{
		{Port: schema.PortBusan, Vessel: "MSC Busan", ETA: schema.ETAUnknown},
		{Port: schema.PortIncheon, Vessel: "MSC Busan", ETA: ""},
		{Port: schema.PortBusan, Vessel: "---", ETA: "2026-01-01"},
	}
	groups := Aggregate(records)

	require.Len(t, groups, 1, "unnamed record must not create a group")
	group := groups["MSCBUSAN"]
	assert.Empty(t, group.Dates, "sentinel and empty ETAs are not collected")
	assert.Len(t, group.Ports, 2)
}

func TestAggregateDuplicatePortsCollapse(t *testing.T) {
	records := []schema.ScheduleRecord{
		{Port: schema.PortBusan, Vessel: "ONE Cosmos", ETA: "2026-03-01"},
		{Port: schema.PortBusan, Vessel: "ONE Cosmos", ETA: "2026-03-08"},
	}
	groups := Aggregate(records)
	require.Contains(t, groups, "ONECOSMOS")
	assert.Len(t, groups["ONECOSMOS"].Ports, 1)
	assert.Len(t, groups["ONECOSMOS"].Dates, 2)
}

func TestResolve(t *testing.T) {
	t.Run("exact match wins over containment candidate", func(t *testing.T) {
		exact := &VesselGroup{OriginalName: "MSC Busan"}
		contained := &VesselGroup{OriginalName: "MSC Busan Voy2"}
		groups := map[string]*VesselGroup{
			"MSCBUSAN":     exact,
			"MSCBUSANVOY2": contained,
		}
		assert.Same(t, exact, Resolve("MSC BUSAN", groups))
	})

	t.Run("containment fallback matches either direction", func(t *testing.T) {
		group := &VesselGroup{OriginalName: "MSC Busan Voy2"}
		groups := map[string]*VesselGroup{"MSCBUSANVOY2": group}
		// input contained in candidate
		assert.Same(t, group, Resolve("MSC BUSAN", groups))

		short := &VesselGroup{OriginalName: "Busan"}
		groups = map[string]*VesselGroup{"BUSAN": short}
		// candidate contained in input
		assert.Same(t, short, Resolve("MSC Busan Voy2", groups))
	})

	t.Run("no candidate returns nil", func(t *testing.T) {
		groups := map[string]*VesselGroup{"HMMALGECIRAS": {}}
		assert.Nil(t, Resolve("MSC Busan", groups))
	})

	t.Run("empty name attempts no match", func(t *testing.T) {
		groups := map[string]*VesselGroup{"": {}}
		assert.Nil(t, Resolve("  !!  ", groups))
	})
}

func TestComposeETA(t *testing.T) {
	t.Run("earliest date with sorted port codes", func(t *testing.T) {
		group := &VesselGroup{
			Dates: []string{"2026-02-17", "2026-02-15"},
			Ports: map[string]struct{}{
				schema.PortGwangyang: {},
				schema.PortBusan:     {},
			},
		}
		assert.Equal(t, "2026-02-15 B G", ComposeETA(group))
	})

	t.Run("single port", func(t *testing.T) {
		group := &VesselGroup{
			Dates: []string{"2026-03-01"},
			Ports: map[string]struct{}{schema.PortIncheon: {}},
		}
		assert.Equal(t, "2026-03-01 I", ComposeETA(group))
	})

	t.Run("no dates is a precondition violation", func(t *testing.T) {
		group := &VesselGroup{Ports: map[string]struct{}{schema.PortBusan: {}}}
		assert.Panics(t, func() { ComposeETA(group) })
	})
}
