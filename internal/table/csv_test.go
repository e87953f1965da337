package table

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collectRows(t *testing.T, rowCh <-chan []string, errCh <-chan error) ([][]string, error) {
	t.Helper()
	var rows [][]string
	for row := range rowCh {
		rows = append(rows, row)
	}
	for err := range errCh {
		if err != nil {
			return rows, err
		}
	}
	return rows, nil
}

func TestStreamCSV_Basic(t *testing.T) {
	t.Parallel()

	input := "a,b,c\n1,2,3\n4,5,6\n"
	rowCh, errCh := StreamCSV(context.Background(), strings.NewReader(input), CSVOptions{})
	rows, err := collectRows(t, rowCh, errCh)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"a", "b", "c"}, rows[0])
	assert.Equal(t, []string{"4", "5", "6"}, rows[2])
}

func TestStreamCSV_PipeDelimitedTrimmed(t *testing.T) {
	t.Parallel()

	input := "a | b\n 1 | 2 \n"
	rowCh, errCh := StreamCSV(context.Background(), strings.NewReader(input), CSVOptions{
		Delimiter: '|',
		TrimSpace: true,
	})
	rows, err := collectRows(t, rowCh, errCh)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"1", "2"}, rows[1])
}

func TestStreamCSV_Cancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rowCh, errCh := StreamCSV(ctx, strings.NewReader("a\n1\n"), CSVOptions{})
	_, err := collectRows(t, rowCh, errCh)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "context cancelled")
}

func TestReadCSV_Frame(t *testing.T) {
	t.Parallel()

	input := "Unique Key,Complaint Type,Latitude\n1,Noise,40.71\n2,,\n3,Heat,40.80\n"
	f, err := ReadCSV(context.Background(), strings.NewReader(input), CSVOptions{})
	require.NoError(t, err)

	assert.Equal(t, []string{"Unique Key", "Complaint Type", "Latitude"}, f.Columns())
	assert.Equal(t, 3, f.Len())

	lat, ok := f.Column("Latitude")
	require.True(t, ok)
	assert.Equal(t, []string{"40.71", "", "40.80"}, lat)
}

func TestReadCSV_StripsBOM(t *testing.T) {
	t.Parallel()

	input := "\ufeffid,name\n1,x\n"
	f, err := ReadCSV(context.Background(), strings.NewReader(input), CSVOptions{})
	require.NoError(t, err)

	_, ok := f.Column("id")
	assert.True(t, ok)
}

func TestReadCSV_MaxRows(t *testing.T) {
	t.Parallel()

	var b strings.Builder
	b.WriteString("n\n")
	for i := 0; i < 500; i++ {
		b.WriteString("v\n")
	}

	f, err := ReadCSV(context.Background(), strings.NewReader(b.String()), CSVOptions{MaxRows: 10})
	require.NoError(t, err)
	assert.Equal(t, 10, f.Len())
}

func TestReadCSV_Empty(t *testing.T) {
	t.Parallel()

	_, err := ReadCSV(context.Background(), strings.NewReader(""), CSVOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing header row")
}

func TestReadCSV_Malformed(t *testing.T) {
	t.Parallel()

	_, err := ReadCSV(context.Background(), strings.NewReader("a,b\n\"unterminated,1\n"), CSVOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "csv: read row")
}
