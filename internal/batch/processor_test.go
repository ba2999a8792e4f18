package batch

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skoll/internal/book"
)

func writeFile(t *testing.T, lines string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "commands.csv")
	require.NoError(t, os.WriteFile(path, []byte(lines), 0o644))
	return path
}

func TestProcessFile_BasicScript(t *testing.T) {
	path := writeFile(t, `# resting liquidity
CREATE,1,BUY,GTC,100,10
CREATE,2,SELL,GTC,101,5

CREATE,3,SELL,GTC,100,10
`)

	b := book.New()
	res, err := ProcessFile(path, b)
	require.NoError(t, err)

	assert.Equal(t, 5, res.Lines)
	assert.Equal(t, 3, res.Applied)
	assert.Equal(t, 0, res.Skipped)
	assert.Equal(t, 1, res.Trades)

	assert.Equal(t, 1, b.Size())
	snap := b.Snapshot()
	assert.Empty(t, snap.Bids)
	assert.Equal(t, book.Price(101), snap.Asks[0].Price)
}

func TestProcessFile_ModifyAndCancel(t *testing.T) {
	path := writeFile(t, `CREATE,1,BUY,GTC,100,5
CREATE,2,BUY,GTC,100,5
MODIFY,1,BUY,GTC,100,5
CREATE,3,SELL,GTC,100,5
CANCEL,2
`)

	b := book.New()
	res, err := ProcessFile(path, b)
	require.NoError(t, err)
	assert.Equal(t, 5, res.Applied)
	assert.Equal(t, 1, res.Trades)

	// Order 1 forfeited priority to order 2, which traded and is gone; the
	// trailing cancel of 2 is then a no-op.
	assert.True(t, b.Exists(1))
	assert.False(t, b.Exists(2))
	assert.Equal(t, 1, b.Size())
}

func TestProcessFile_BadLinesSkipped(t *testing.T) {
	path := writeFile(t, `CREATE,1,BUY,GTC,100,10
CREATE,notanid,BUY,GTC,100,10
CREATE,2,BUY,GTC,0,10
CREATE,3,BUY,GTC,100,0
CREATE,4,HOLD,GTC,100,10
CREATE,5,BUY,GTC,100
SHRED,6
CREATE,7,BUY,GTC,99999999999999,10
CREATE,8,BUY,GTC,100,99999999999999
CREATE,9,SELL,GTC,105,3
`)

	b := book.New()
	res, err := ProcessFile(path, b)
	require.NoError(t, err)

	assert.Equal(t, 2, res.Applied)
	assert.Equal(t, 8, res.Skipped)
	assert.Equal(t, 2, b.Size())
	assert.True(t, b.Exists(1))
	assert.True(t, b.Exists(9))
}

func TestProcessFile_MissingFile(t *testing.T) {
	b := book.New()
	_, err := ProcessFile(filepath.Join(t.TempDir(), "absent.csv"), b)
	assert.Error(t, err)
}
