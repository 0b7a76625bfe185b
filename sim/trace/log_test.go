package trace

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLog_Append_StampsSequence(t *testing.T) {
	l := NewLog()
	l.Append(Record{Time: 0, Kind: "TradeAvailable", Outcome: OutcomeOffered})
	l.Append(Record{Time: 5, Kind: "VesselArrival", Outcome: OutcomeBerthed})

	require.Len(t, l.Records, 2)
	assert.Equal(t, uint64(1), l.Records[0].Seq)
	assert.Equal(t, uint64(2), l.Records[1].Seq)
}

func TestLog_Faults_FiltersByPrefix(t *testing.T) {
	l := NewLog()
	l.Append(Record{Outcome: OutcomeDelivered})
	l.Append(Record{Outcome: FaultPrefix + "no route A -> B"})
	l.Append(Record{Outcome: OutcomeExpired})

	faults := l.Faults()
	require.Len(t, faults, 1)
	assert.Equal(t, FaultPrefix+"no route A -> B", faults[0].Outcome)
}

func TestLog_JSONL_RoundTrip(t *testing.T) {
	l := NewLog()
	l.Append(Record{Time: 0, Kind: "TradeAvailable", Cargo: "c1", Volume: 42.5, Outcome: OutcomeOffered})
	l.Append(Record{Time: 3, Kind: "VesselDeparture", Vessel: "v1", Port: "A", Dest: "B", Outcome: OutcomeDeparted})
	l.Append(Record{Time: 9, Kind: "UnloadingComplete", Cargo: "c1", Vessel: "v1", Port: "B", Volume: 42.5, Outcome: OutcomeDelivered})

	var buf bytes.Buffer
	require.NoError(t, l.WriteJSONL(&buf))

	back, err := ReadJSONL(&buf)
	require.NoError(t, err)
	assert.Equal(t, l.Records, back.Records)
}

func TestLog_WriteJSONL_Deterministic(t *testing.T) {
	build := func() *Log {
		l := NewLog()
		l.Append(Record{Time: 1, Kind: "VesselArrival", Vessel: "v1", Port: "B", Outcome: OutcomeQueued})
		l.Append(Record{Time: 2, Kind: "BerthGranted", Vessel: "v1", Port: "B", Outcome: OutcomeBerthed})
		return l
	}

	var a, b bytes.Buffer
	require.NoError(t, build().WriteJSONL(&a))
	require.NoError(t, build().WriteJSONL(&b))
	assert.Equal(t, a.Bytes(), b.Bytes())
}

func TestReadJSONL_SkipsBlankLines_RejectsGarbage(t *testing.T) {
	l, err := ReadJSONL(bytes.NewBufferString("{\"seq\":1,\"time\":0,\"kind\":\"k\",\"outcome\":\"offered\"}\n\n"))
	require.NoError(t, err)
	assert.Len(t, l.Records, 1)

	_, err = ReadJSONL(bytes.NewBufferString("not a record\n"))
	assert.Error(t, err)
}
