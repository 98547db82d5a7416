// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package doiload

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTemp(t *testing.T, name, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"bare DOI", "10.1002/admi.202000353", "10.1002/admi.202000353"},
		{"surrounding whitespace", "  10.1002/admi.202000353 \n", "10.1002/admi.202000353"},
		{"resolver URL", "https://doi.org/10.1021/acschemneuro.7b00193", "10.1021/acschemneuro.7b00193"},
		{"http resolver URL", "http://doi.org/10.1126/science.1127344", "10.1126/science.1127344"},
		{"dx resolver URL", "https://dx.doi.org/10.1126/science.1127344", "10.1126/science.1127344"},
		{"doi prefix", "doi:10.1126/science.1127344", "10.1126/science.1127344"},
		{"uppercase DOI prefix", "DOI:10.1126/science.1127344", "10.1126/science.1127344"},
		{"empty", "", ""},
		{"whitespace only", "   \t", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.in); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestLoadText(t *testing.T) {
	path := writeTemp(t, "dois.txt", `10.1002/admi.202000353
https://doi.org/10.1021/acschemneuro.7b00193

doi:10.1002/admi.202000353
10.1126/science.1127344
`)

	dois, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"10.1002/admi.202000353",
		"10.1021/acschemneuro.7b00193",
		"10.1126/science.1127344",
	}, dois, "duplicates keep first-occurrence order, blanks dropped")
}

func TestLoadCSV(t *testing.T) {
	path := writeTemp(t, "papers.csv", `title,DOI,year
Some Paper,10.1002/admi.202000353,2020
Other Paper,https://doi.org/10.1126/science.1127344,2006
Dup Paper,10.1002/admi.202000353,2021
`)

	dois, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"10.1002/admi.202000353",
		"10.1126/science.1127344",
	}, dois, "doi column found case-insensitively at any position")
}

func TestLoadCSVMissingColumn(t *testing.T) {
	path := writeTemp(t, "papers.csv", `title,year
Some Paper,2020
`)

	_, err := Load(path)
	assert.ErrorIs(t, err, ErrNoDOIColumn)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.txt"))
	assert.Error(t, err)
}

func TestLoadEmptyFile(t *testing.T) {
	path := writeTemp(t, "dois.txt", "\n\n  \n")
	_, err := Load(path)
	assert.ErrorIs(t, err, ErrNoDOIs)
}

func TestParseManual(t *testing.T) {
	dois, err := ParseManual(" 10.1126/science.1127344, doi:10.1002/admi.202000353 ,, 10.1126/science.1127344")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"10.1126/science.1127344",
		"10.1002/admi.202000353",
	}, dois)
}

func TestParseManualEmpty(t *testing.T) {
	_, err := ParseManual(" , ,")
	assert.ErrorIs(t, err, ErrNoDOIs)
}
