package ridership

import (
	"bytes"
	"context"
	"os"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/travigo/transit-evaluation/pkg/correlation"
	"github.com/travigo/transit-evaluation/pkg/events"
	"github.com/travigo/transit-evaluation/pkg/tables"
	"github.com/travigo/transit-evaluation/pkg/vehicles"
)

var classes = vehicles.NewLookup([]vehicles.Vehicle{
	{ID: "bus_1", TypeID: "bus"},
	{ID: "tram_7", TypeID: "tram"},
})

func reconstruct(t *testing.T, log string, options Options) ([]Record, *correlation.Stats) {
	t.Helper()

	source := events.NewSource("test", strings.NewReader(log), events.DefaultRoot)
	defer source.Close()

	stats := correlation.NewStats(nil)
	records, err := Reconstruct(context.Background(), source.All(), classes, options, stats)
	require.NoError(t, err)

	return records, stats
}

func TestReconstructGolden(t *testing.T) {
	log, err := os.ReadFile("testdata/events.xml")
	require.NoError(t, err)

	records, stats := reconstruct(t, string(log), DefaultOptions())

	var buffer bytes.Buffer
	require.NoError(t, tables.MarshalCSV(records, &buffer))

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "ridership", buffer.Bytes())

	assert.EqualValues(t, 19, stats.Events())
	assert.EqualValues(t, 2, stats.Emitted())
	assert.EqualValues(t, 3, stats.Count(correlation.AnomalyExcluded))
	assert.EqualValues(t, 1, stats.ExcludedEntities())
	assert.EqualValues(t, 1, stats.Count(correlation.AnomalyDuplicateOpen))
	assert.EqualValues(t, 1, stats.Count(AnomalyWalkingOnly))
	assert.Zero(t, stats.Count(correlation.AnomalyDiscarded))
	assert.EqualValues(t, 1, stats.Count(correlation.AnomalyUnfinished))
}

func TestOperatorsAreExcluded(t *testing.T) {
	records, stats := reconstruct(t, `<events>
		<event time="1" type="departure" person="pt_tram_7_driver" computationalRoutingMode="car"/>
		<event time="2" type="PersonEntersVehicle" person="pt_tram_7_driver" vehicle="tram_7"/>
		<event time="3" type="actstart" person="pt_tram_7_driver" actType="work"/>
	</events>`, DefaultOptions())

	assert.Empty(t, records)
	assert.EqualValues(t, 3, stats.Count(correlation.AnomalyExcluded))
	assert.EqualValues(t, 1, stats.ExcludedEntities())
	assert.Zero(t, stats.Count(correlation.AnomalyOrphanClose))
}

func TestOperatorExclusionOff(t *testing.T) {
	records, stats := reconstruct(t, `<events>
		<event time="1" type="departure" person="pt_tram_7_driver" computationalRoutingMode="car"/>
		<event time="2" type="PersonEntersVehicle" person="pt_tram_7_driver" vehicle="tram_7"/>
		<event time="3" type="actstart" person="pt_tram_7_driver" actType="work"/>
	</events>`, Options{TransferActivity: DefaultTransferActivity})

	require.Len(t, records, 1)
	assert.Equal(t, "pt_tram_7_driver", records[0].PersonID)
	assert.Zero(t, stats.Count(correlation.AnomalyExcluded))
	assert.Zero(t, stats.ExcludedEntities())
}

func TestWalkingTripsAreCountedSeparately(t *testing.T) {
	records, stats := reconstruct(t, `<events>
		<event time="1" type="departure" person="p1" legMode="walk" computationalRoutingMode="walk"/>
		<event time="60" type="arrival" person="p1" legMode="walk"/>
		<event time="60" type="actstart" person="p1" actType="home"/>
	</events>`, DefaultOptions())

	assert.Empty(t, records)
	assert.EqualValues(t, 1, stats.Count(AnomalyWalkingOnly))
	assert.Zero(t, stats.Count(correlation.AnomalyDiscarded))
}

func TestTransfersContinueTheTrip(t *testing.T) {
	records, _ := reconstruct(t, `<events>
		<event time="100" type="departure" person="p1" computationalRoutingMode="pt"/>
		<event time="110" type="PersonEntersVehicle" person="p1" vehicle="bus_1"/>
		<event time="200" type="actstart" person="p1" actType="pt interaction"/>
		<event time="210" type="PersonEntersVehicle" person="p1" vehicle="bus_1"/>
		<event time="300" type="actstart" person="p1" actType="work"/>
	</events>`, DefaultOptions())

	require.Len(t, records, 1)
	assert.Equal(t, Record{
		PersonID:       "p1",
		VehicleClasses: tables.PipeList{"bus", "bus"},
		VehicleIDs:     tables.PipeList{"bus_1", "bus_1"},
		MainMode:       "pt",
		StartTime:      100,
		TravelTime:     200,
	}, records[0])
}

func TestUnknownVehicleClass(t *testing.T) {
	records, _ := reconstruct(t, `<events>
		<event time="0" type="departure" person="p1" computationalRoutingMode="pt"/>
		<event time="5" type="PersonEntersVehicle" person="p1" vehicle="shuttle"/>
		<event time="10" type="actstart" person="p1" actType="leisure"/>
	</events>`, DefaultOptions())

	require.Len(t, records, 1)
	assert.Equal(t, tables.PipeList{vehicles.UnknownClass}, records[0].VehicleClasses)
}

func TestRecordsFollowCloseOrder(t *testing.T) {
	records, _ := reconstruct(t, `<events>
		<event time="0" type="departure" person="first" computationalRoutingMode="pt"/>
		<event time="1" type="departure" person="second" computationalRoutingMode="pt"/>
		<event time="2" type="PersonEntersVehicle" person="first" vehicle="bus_1"/>
		<event time="3" type="PersonEntersVehicle" person="second" vehicle="tram_7"/>
		<event time="4" type="actstart" person="second" actType="work"/>
		<event time="5" type="actstart" person="first" actType="work"/>
	</events>`, DefaultOptions())

	require.Len(t, records, 2)
	assert.Equal(t, "second", records[0].PersonID)
	assert.Equal(t, "first", records[1].PersonID)
}

func TestDuplicateDepartureKeepsFirst(t *testing.T) {
	records, stats := reconstruct(t, `<events>
		<event time="0" type="departure" person="p1" computationalRoutingMode="pt"/>
		<event time="5" type="departure" person="p1" computationalRoutingMode="car"/>
		<event time="6" type="PersonEntersVehicle" person="p1" vehicle="bus_1"/>
		<event time="10" type="actstart" person="p1" actType="work"/>
	</events>`, DefaultOptions())

	require.Len(t, records, 1)
	assert.Equal(t, "pt", records[0].MainMode)
	assert.EqualValues(t, 0, records[0].StartTime)
	assert.EqualValues(t, 1, stats.Count(correlation.AnomalyDuplicateOpen))
}

func TestMainModeIsTheRoutingMode(t *testing.T) {
	records, _ := reconstruct(t, `<events>
		<event time="0" type="departure" person="p1" legMode="walk" computationalRoutingMode="pt"/>
		<event time="1" type="PersonEntersVehicle" person="p1" vehicle="bus_1"/>
		<event time="2" type="actstart" person="p1" actType="work"/>
		<event time="3" type="departure" person="p2" legMode="walk"/>
		<event time="4" type="PersonEntersVehicle" person="p2" vehicle="bus_1"/>
		<event time="5" type="actstart" person="p2" actType="work"/>
		<event time="6" type="departure" person="p3" mode="bus"/>
		<event time="7" type="PersonEntersVehicle" person="p3" vehicle="bus_1"/>
		<event time="8" type="actstart" person="p3" actType="work"/>
	</events>`, DefaultOptions())

	require.Len(t, records, 3)
	assert.Equal(t, "pt", records[0].MainMode)
	assert.Empty(t, records[1].MainMode)
	assert.Empty(t, records[2].MainMode)
}

func TestCustomOptions(t *testing.T) {
	records, stats := reconstruct(t, `<events>
		<event time="0" type="departure" person="op_1" computationalRoutingMode="pt"/>
		<event time="0" type="departure" person="pt_1" computationalRoutingMode="pt"/>
		<event time="1" type="PersonEntersVehicle" person="pt_1" vehicle="bus_1"/>
		<event time="2" type="actstart" person="pt_1" actType="transfer"/>
		<event time="3" type="PersonEntersVehicle" person="pt_1" vehicle="tram_7"/>
		<event time="4" type="actstart" person="pt_1" actType="work"/>
	</events>`, Options{OperatorPrefix: "op_", TransferActivity: "transfer"})

	require.Len(t, records, 1)
	assert.Equal(t, "pt_1", records[0].PersonID)
	assert.Equal(t, tables.PipeList{"bus_1", "tram_7"}, records[0].VehicleIDs)
	assert.EqualValues(t, 1, stats.Count(correlation.AnomalyExcluded))
	assert.Zero(t, stats.Count(correlation.AnomalyUnfinished))
}

func TestEmptyLog(t *testing.T) {
	records, stats := reconstruct(t, `<events version="1.0"></events>`, DefaultOptions())

	assert.NotNil(t, records)
	assert.Empty(t, records)
	assert.Zero(t, stats.Events())
	assert.Empty(t, stats.Anomalies())
}
