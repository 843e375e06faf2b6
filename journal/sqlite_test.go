package journal

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteJournal(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "journal.db")
	j, err := NewSQLite(path)
	require.NoError(t, err)
	defer j.Close()

	first := sampleTrade()
	second := sampleTrade()
	second.TradeID = "01J0000000000000000000NEXT"
	second.CloseTime = first.CloseTime.Add(time.Hour)
	second.RealizedPnL = -400
	second.Reason = "SL"

	require.NoError(t, j.RecordTrade(first))
	require.NoError(t, j.RecordTrade(second))
	require.NoError(t, j.RecordEquity(EquitySnapshot{Time: first.CloseTime, Equity: 11500}))

	got, err := j.Trades()
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, first.TradeID, got[0].TradeID)
	assert.Equal(t, first.RealizedPnL, got[0].RealizedPnL)
	assert.Equal(t, first.OpenTime, got[0].OpenTime)
	assert.Equal(t, first.CloseTime, got[0].CloseTime)
	assert.Equal(t, "SL", got[1].Reason)
	assert.Equal(t, -400.0, got[1].RealizedPnL)
}

func TestSQLiteJournalDuplicateID(t *testing.T) {
	t.Parallel()

	j, err := NewSQLite(filepath.Join(t.TempDir(), "dup.db"))
	require.NoError(t, err)
	defer j.Close()

	tr := sampleTrade()
	require.NoError(t, j.RecordTrade(tr))
	assert.Error(t, j.RecordTrade(tr))
}

func TestSQLiteJournalReopen(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "journal.db")

	j, err := NewSQLite(path)
	require.NoError(t, err)
	require.NoError(t, j.RecordTrade(sampleTrade()))
	require.NoError(t, j.Close())

	j2, err := NewSQLite(path)
	require.NoError(t, err)
	defer j2.Close()

	got, err := j2.Trades()
	require.NoError(t, err)
	assert.Len(t, got, 1)
}
