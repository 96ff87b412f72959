package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/kisom/sdat"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const transferList = "4\n" +
	"3\n" +
	"0\n" +
	"0\n" +
	"erase 2,0,4\n" +
	"new 4,2,4,0,1\n"

func writeInputs(t *testing.T, blocks int) (dir, list, data string) {
	t.Helper()

	dir = t.TempDir()
	list = filepath.Join(dir, "system.transfer.list")
	data = filepath.Join(dir, "system.new.dat")
	require.NoError(t, os.WriteFile(list, []byte(transferList), 0644))
	require.NoError(t, os.WriteFile(data, bytes.Repeat([]byte{0xa5}, blocks*sdat.BlockSize), 0644))
	return dir, list, data
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	app := newApp()
	app.Writer = &out
	app.ErrWriter = &out
	err := app.Run(append([]string{"sdat2img", "--progress=false"}, args...))
	return out.String(), err
}

func TestConvert(t *testing.T) {
	dir, list, data := writeInputs(t, 3)
	output := filepath.Join(dir, "out.img")

	out, err := run(t, list, data, output)
	require.NoError(t, err)
	assert.Contains(t, out, "Parsed transfer list version: 4")
	assert.Contains(t, out, "Total new blocks: 3")
	assert.Contains(t, out, "out.img")

	fi, err := os.Stat(output)
	require.NoError(t, err)
	assert.EqualValues(t, 4*sdat.BlockSize, fi.Size())
}

func TestConvertDefaultOutput(t *testing.T) {
	_, list, data := writeInputs(t, 3)

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	defer os.Chdir(wd)

	_, err = run(t, list, data)
	require.NoError(t, err)
	_, err = os.Stat(sdat.DefaultOutput)
	assert.NoError(t, err)
}

func TestConvertTruncatedRemovesOutput(t *testing.T) {
	dir, list, data := writeInputs(t, 2)
	output := filepath.Join(dir, "out.img")

	_, err := run(t, list, data, output)
	require.ErrorIs(t, err, sdat.ErrTruncatedSource)
	_, err = os.Stat(output)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestConvertTruncatedKeepPartial(t *testing.T) {
	dir, list, data := writeInputs(t, 2)
	output := filepath.Join(dir, "out.img")

	_, err := run(t, "--keep-partial", list, data, output)
	require.ErrorIs(t, err, sdat.ErrTruncatedSource)
	_, err = os.Stat(output)
	assert.NoError(t, err)
}

func TestConvertStrict(t *testing.T) {
	dir, list, data := writeInputs(t, 3)
	require.NoError(t, os.WriteFile(list, []byte("1\n5\nnew 2,0,3\n"), 0644))

	_, err := run(t, "--strict", list, data, filepath.Join(dir, "out.img"))
	assert.ErrorIs(t, err, sdat.ErrBlockCountMismatch)
}

func TestConvertArgs(t *testing.T) {
	_, err := run(t, "only-one")
	assert.Error(t, err)

	_, err = run(t, "a", "b", "c", "d")
	assert.Error(t, err)
}
